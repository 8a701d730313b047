package repository

import (
	"context"

	"github.com/lshigami/jlpt-assessment/internal/model"
	"gorm.io/gorm"
)

type QuestionSetRepository interface {
	WithTx(tx *gorm.DB) QuestionSetRepository
	FindByIDs(ctx context.Context, ids []uint) ([]model.QuestionSet, error)
}

type questionSetRepository struct {
	db *gorm.DB
}

func NewQuestionSetRepository(db *gorm.DB) QuestionSetRepository {
	return &questionSetRepository{db: db}
}

func (r *questionSetRepository) WithTx(tx *gorm.DB) QuestionSetRepository {
	return &questionSetRepository{db: tx}
}

// FindByIDs returns the sets that exist, ordered by id. Callers compare the
// result against the requested ids to detect missing ones.
func (r *questionSetRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.QuestionSet, error) {
	var sets []model.QuestionSet
	if len(ids) == 0 {
		return sets, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&sets).Error
	return sets, err
}
