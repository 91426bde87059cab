package db

import (
	"fmt"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureIndexes adds the composite indexes the recommendation queries lean on.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_paper_rank", `CREATE INDEX IF NOT EXISTS idx_paper_rank ON paper (popularity DESC, published_date DESC, id ASC);`},
		{"idx_recommendation_user_created", `CREATE INDEX IF NOT EXISTS idx_recommendation_user_created ON recommendation (user_id, created_at DESC);`},
		{"idx_user_action_user_type", `CREATE INDEX IF NOT EXISTS idx_user_action_user_type ON user_action (user_id, action_type, created_at DESC);`},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}
