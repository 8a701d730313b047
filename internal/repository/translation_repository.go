package repository

import (
	"context"

	"github.com/lshigami/jlpt-assessment/internal/model"
	"gorm.io/gorm"
)

type TranslationRepository interface {
	WithTx(tx *gorm.DB) TranslationRepository
	// Find returns (nil, nil) when no translation is stored.
	Find(ctx context.Context, key, languageCode string) (*model.Translation, error)
	FindAllByKey(ctx context.Context, key string) ([]model.Translation, error)
	// FindByKeys returns the stored translations of keys in one language.
	FindByKeys(ctx context.Context, keys []string, languageCode string) ([]model.Translation, error)
	FindAllByKeys(ctx context.Context, keys []string) ([]model.Translation, error)
	CreateBatch(ctx context.Context, translations []model.Translation) error
	Languages(ctx context.Context) ([]model.Language, error)
}

type translationRepository struct {
	db *gorm.DB
}

func NewTranslationRepository(db *gorm.DB) TranslationRepository {
	return &translationRepository{db: db}
}

func (r *translationRepository) WithTx(tx *gorm.DB) TranslationRepository {
	return &translationRepository{db: tx}
}

func (r *translationRepository) Find(ctx context.Context, key, languageCode string) (*model.Translation, error) {
	var tr model.Translation
	err := r.db.WithContext(ctx).
		Where("key = ? AND language_code = ?", key, languageCode).
		First(&tr).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &tr, nil
}

func (r *translationRepository) FindAllByKey(ctx context.Context, key string) ([]model.Translation, error) {
	var trs []model.Translation
	err := r.db.WithContext(ctx).Where("key = ?", key).Order("language_code ASC").Find(&trs).Error
	return trs, err
}

func (r *translationRepository) FindByKeys(ctx context.Context, keys []string, languageCode string) ([]model.Translation, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var trs []model.Translation
	err := r.db.WithContext(ctx).
		Where("key IN ? AND language_code = ?", keys, languageCode).
		Find(&trs).Error
	return trs, err
}

func (r *translationRepository) FindAllByKeys(ctx context.Context, keys []string) ([]model.Translation, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var trs []model.Translation
	err := r.db.WithContext(ctx).
		Where("key IN ?", keys).
		Order("key ASC, language_code ASC").
		Find(&trs).Error
	return trs, err
}

func (r *translationRepository) CreateBatch(ctx context.Context, translations []model.Translation) error {
	if len(translations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&translations).Error
}

func (r *translationRepository) Languages(ctx context.Context) ([]model.Language, error) {
	var langs []model.Language
	err := r.db.WithContext(ctx).Order("code ASC").Find(&langs).Error
	return langs, err
}
