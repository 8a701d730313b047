package repository

import (
	"context"

	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestRepository interface {
	WithTx(tx *gorm.DB) TestRepository
	Create(ctx context.Context, test *model.Test) error
	FindByID(ctx context.Context, id uint) (*model.Test, error)
	// FindByIDForUpdate locks the test row until the surrounding transaction
	// ends, serializing concurrent composition changes on the same test.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Test, error)
	Update(ctx context.Context, test *model.Test) error
	Delete(ctx context.Context, id uint) error
	LinkedQuestionSets(ctx context.Context, testID uint) ([]model.QuestionSet, error)
	AttachQuestionSets(ctx context.Context, testID uint, questionSetIDs []uint) error
	DetachQuestionSet(ctx context.Context, testID, questionSetID uint) (bool, error)
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) WithTx(tx *gorm.DB) TestRepository {
	return &testRepository{db: tx}
}

func (r *testRepository) Create(ctx context.Context, test *model.Test) error {
	return r.db.WithContext(ctx).Omit("QuestionSets").Create(test).Error
}

func (r *testRepository) FindByID(ctx context.Context, id uint) (*model.Test, error) {
	var test model.Test
	if err := r.db.WithContext(ctx).First(&test, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("test", id)
		}
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&test, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("test", id)
		}
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) Update(ctx context.Context, test *model.Test) error {
	return r.db.WithContext(ctx).Omit("QuestionSets").Save(test).Error
}

func (r *testRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&model.TestQuestionSet{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Test{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("test", id)
		}
		return nil
	})
}

func (r *testRepository) LinkedQuestionSets(ctx context.Context, testID uint) ([]model.QuestionSet, error) {
	var sets []model.QuestionSet
	err := r.db.WithContext(ctx).
		Joins("JOIN test_question_sets tqs ON tqs.question_set_id = question_sets.id").
		Where("tqs.test_id = ?", testID).
		Order("question_sets.id ASC").
		Find(&sets).Error
	return sets, err
}

func (r *testRepository) AttachQuestionSets(ctx context.Context, testID uint, questionSetIDs []uint) error {
	if len(questionSetIDs) == 0 {
		return nil
	}
	links := make([]model.TestQuestionSet, 0, len(questionSetIDs))
	for _, id := range questionSetIDs {
		links = append(links, model.TestQuestionSet{TestID: testID, QuestionSetID: id})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *testRepository) DetachQuestionSet(ctx context.Context, testID, questionSetID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("test_id = ? AND question_set_id = ?", testID, questionSetID).
		Delete(&model.TestQuestionSet{})
	return res.RowsAffected > 0, res.Error
}
