package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Paper is read-only reference data for the recommendation core.
// ID is the external identifier (an arXiv id for scraped papers).
type Paper struct {
	ID             string     `gorm:"primaryKey;size:100" json:"id"`
	Title          string     `gorm:"column:title;size:500;not null" json:"title"`
	Abstract       string     `gorm:"column:abstract;type:text" json:"abstract,omitempty"`
	Authors        string     `gorm:"column:authors;type:text" json:"authors,omitempty"`
	PublishedDate  *time.Time `gorm:"column:published_date;index" json:"published_date,omitempty"`
	SourceURL      string     `gorm:"column:source_url;size:500" json:"source,omitempty"`
	PrimarySubject string     `gorm:"column:primary_subject;size:500;index" json:"primary_subject,omitempty"`
	Subjects       string     `gorm:"column:subjects;size:1000" json:"subjects,omitempty"`
	Popularity     int        `gorm:"column:popularity;not null;default:0;index" json:"popularity"`

	// Tags is filled by the paper repo from paper_tag; it is not a gorm association.
	Tags []Tag `gorm:"-" json:"tags,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Paper) TableName() string { return "paper" }

// BeforeSave stores publication dates in UTC. sqlite keeps them as text, so
// mixed offsets would otherwise order lexically instead of chronologically.
func (p *Paper) BeforeSave(*gorm.DB) error {
	if p.PublishedDate != nil {
		utc := p.PublishedDate.UTC()
		p.PublishedDate = &utc
	}
	return nil
}

// TagIDs returns the ids of the loaded tags.
func (p *Paper) TagIDs() []uint {
	if p == nil {
		return nil
	}
	out := make([]uint, 0, len(p.Tags))
	for _, t := range p.Tags {
		out = append(out, t.ID)
	}
	return out
}

type PaperTag struct {
	PaperID string `gorm:"primaryKey;size:100" json:"paper_id"`
	TagID   uint   `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
}

func (PaperTag) TableName() string { return "paper_tag" }
