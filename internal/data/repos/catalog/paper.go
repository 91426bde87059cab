package catalog

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

// RankOrder is the total order used for every candidate listing, the SQL twin of recommend.Less.
// Missing publication dates sort after dated papers, and ids compare bytewise on every dialect
// (sqlite's default BINARY collation already does; postgres needs "C" to ignore the locale).
func RankOrder(dialect string) string {
	idOrder := "id ASC"
	if dialect == "postgres" {
		idOrder = `id COLLATE "C" ASC`
	}
	return "popularity DESC, (published_date IS NULL) ASC, published_date DESC, " + idOrder
}

type PaperRepo interface {
	Create(dbc dbctx.Context, papers []*types.Paper) ([]*types.Paper, error)
	GetByID(dbc dbctx.Context, id string) (*types.Paper, error)
	GetByIDs(dbc dbctx.Context, ids []string) ([]*types.Paper, error)
	TagIDs(dbc dbctx.Context, paperID string) ([]uint, error)
	List(dbc dbctx.Context, offset, limit int) ([]*types.Paper, int64, error)
	// ListByAnyTag returns distinct papers carrying at least one of tagIDs,
	// and also requireTagID when it is non-zero.
	ListByAnyTag(dbc dbctx.Context, tagIDs []uint, requireTagID uint, limit int) ([]*types.Paper, error)
	// ListPopular returns papers whose primary subject contains subject (case-insensitive).
	// An empty subject matches the whole catalog.
	ListPopular(dbc dbctx.Context, subject string, limit int) ([]*types.Paper, error)
}

type paperRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaperRepo(db *gorm.DB, baseLog *logger.Logger) PaperRepo {
	return &paperRepo{db: db, log: baseLog.With("repo", "PaperRepo")}
}

func (r *paperRepo) Create(dbc dbctx.Context, papers []*types.Paper) ([]*types.Paper, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(papers) == 0 {
		return []*types.Paper{}, nil
	}
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&papers).Error; err != nil {
			return err
		}
		links := make([]*types.PaperTag, 0)
		for _, p := range papers {
			for _, t := range p.Tags {
				links = append(links, &types.PaperTag{PaperID: p.ID, TagID: t.ID})
			}
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
	if err != nil {
		return nil, err
	}
	return papers, nil
}

func (r *paperRepo) GetByID(dbc dbctx.Context, id string) (*types.Paper, error) {
	rows, err := r.GetByIDs(dbc, []string{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *paperRepo) GetByIDs(dbc dbctx.Context, ids []string) ([]*types.Paper, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Paper
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Where("id IN ?", clean).Order(r.rankOrder()).Find(&out).Error; err != nil {
		return nil, err
	}
	if err := r.attachTags(dbc, transaction, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paperRepo) TagIDs(dbc dbctx.Context, paperID string) ([]uint, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []uint
	if paperID == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.PaperTag{}).
		Where("paper_id = ?", paperID).
		Order("tag_id ASC").
		Pluck("tag_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paperRepo) List(dbc dbctx.Context, offset, limit int) ([]*types.Paper, int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var total int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Paper{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Paper
	if err := transaction.WithContext(dbc.Ctx).
		Order(r.rankOrder()).
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	if err := r.attachTags(dbc, transaction, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *paperRepo) ListByAnyTag(dbc dbctx.Context, tagIDs []uint, requireTagID uint, limit int) ([]*types.Paper, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Paper
	if len(tagIDs) == 0 {
		return out, nil
	}
	anyTag := transaction.Model(&types.PaperTag{}).Select("paper_id").Where("tag_id IN ?", tagIDs)
	q := transaction.WithContext(dbc.Ctx).Where("id IN (?)", anyTag)
	if requireTagID != 0 {
		required := transaction.Model(&types.PaperTag{}).Select("paper_id").Where("tag_id = ?", requireTagID)
		q = q.Where("id IN (?)", required)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order(r.rankOrder()).Find(&out).Error; err != nil {
		return nil, err
	}
	if err := r.attachTags(dbc, transaction, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paperRepo) ListPopular(dbc dbctx.Context, subject string, limit int) ([]*types.Paper, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Paper
	q := transaction.WithContext(dbc.Ctx)
	if s := strings.TrimSpace(subject); s != "" {
		q = q.Where(`LOWER(primary_subject) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order(r.rankOrder()).Find(&out).Error; err != nil {
		return nil, err
	}
	if err := r.attachTags(dbc, transaction, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paperRepo) rankOrder() string {
	return RankOrder(r.db.Dialector.Name())
}

// attachTags fills Paper.Tags with one query per batch.
func (r *paperRepo) attachTags(dbc dbctx.Context, transaction *gorm.DB, papers []*types.Paper) error {
	if len(papers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(papers))
	byID := make(map[string]*types.Paper, len(papers))
	for _, p := range papers {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Tags = p.Tags[:0]
	}
	var rows []struct {
		PaperID    string
		ID         uint
		Name       string
		Popularity int
	}
	if err := transaction.WithContext(dbc.Ctx).
		Table("paper_tag AS pt").
		Select("pt.paper_id AS paper_id, t.id AS id, t.name AS name, t.popularity AS popularity").
		Joins("JOIN tag AS t ON t.id = pt.tag_id").
		Where("pt.paper_id IN ?", ids).
		Order("pt.paper_id ASC, t.id ASC").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if p := byID[row.PaperID]; p != nil {
			p.Tags = append(p.Tags, types.Tag{ID: row.ID, Name: row.Name, Popularity: row.Popularity})
		}
	}
	return nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
