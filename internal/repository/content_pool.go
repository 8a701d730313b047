package repository

import (
	"context"

	"github.com/lshigami/jlpt-assessment/internal/model"
	"gorm.io/gorm"
)

// ContentPool is the read-only view of question content the samplers draw
// from.
type ContentPool interface {
	// QuestionsBySet returns each set's questions in storage order with their
	// answers preloaded.
	QuestionsBySet(ctx context.Context, questionSetIDs []uint) (map[uint][]model.Question, error)
}

type contentPool struct {
	db *gorm.DB
}

func NewContentPool(db *gorm.DB) ContentPool {
	return &contentPool{db: db}
}

func (p *contentPool) QuestionsBySet(ctx context.Context, questionSetIDs []uint) (map[uint][]model.Question, error) {
	out := make(map[uint][]model.Question, len(questionSetIDs))
	if len(questionSetIDs) == 0 {
		return out, nil
	}

	var links []model.QuestionSetQuestion
	err := p.db.WithContext(ctx).
		Preload("Question.Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.position ASC, answers.id ASC")
		}).
		Where("question_set_id IN ?", questionSetIDs).
		Order("question_set_id ASC, position ASC, question_id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	for _, link := range links {
		out[link.QuestionSetID] = append(out[link.QuestionSetID], link.Question)
	}
	return out, nil
}
