package personalization

import (
	"sort"
	"time"

	"gorm.io/datatypes"
)

// Preferences is the JSON document stored on a profile.
type Preferences struct {
	PreferredTags []uint `json:"preferred_tags"`
}

// UserProfile holds the tags a user has expressed interest in.
// Version is bumped on every save and guards the read-modify-write.
type UserProfile struct {
	ID          uint                             `gorm:"primaryKey" json:"-"`
	UserID      uint                             `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	Preferences datatypes.JSONType[Preferences] `gorm:"column:preferences" json:"preferences"`
	Version     int                              `gorm:"column:version;not null;default:0" json:"version"`
	LastUpdated time.Time                        `gorm:"column:last_updated;not null" json:"last_updated"`
	CreatedAt   time.Time                        `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                        `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

// PreferredTags returns a copy of the preferred tag ids.
func (p *UserProfile) PreferredTags() []uint {
	if p == nil {
		return nil
	}
	src := p.Preferences.Data().PreferredTags
	out := make([]uint, len(src))
	copy(out, src)
	return out
}

// HasPreference reports whether tagID is in the preferred set.
func (p *UserProfile) HasPreference(tagID uint) bool {
	for _, id := range p.PreferredTags() {
		if id == tagID {
			return true
		}
	}
	return false
}

// SetPreferredTags stores ids deduplicated and sorted ascending.
func (p *UserProfile) SetPreferredTags(ids []uint) {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	p.Preferences = datatypes.NewJSONType(Preferences{PreferredTags: out})
}
