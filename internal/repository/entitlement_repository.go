package repository

import (
	"context"

	"github.com/lshigami/jlpt-assessment/internal/model"
	"gorm.io/gorm"
)

type EntitlementRepository interface {
	WithTx(tx *gorm.DB) EntitlementRepository
	// FindByUserAndTest returns (nil, nil) when the user holds no entitlement.
	FindByUserAndTest(ctx context.Context, userID, testID uint) (*model.Entitlement, error)
	SyncLimitForTest(ctx context.Context, testID uint, limit *int) (int64, error)
	// DecrementLimit consumes one unit of a counted quota with a conditional
	// update. It reports false when the quota is unlimited.
	DecrementLimit(ctx context.Context, userID, testID uint) (bool, error)
}

type entitlementRepository struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepository{db: db}
}

func (r *entitlementRepository) WithTx(tx *gorm.DB) EntitlementRepository {
	return &entitlementRepository{db: tx}
}

func (r *entitlementRepository) FindByUserAndTest(ctx context.Context, userID, testID uint) (*model.Entitlement, error) {
	var ent model.Entitlement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&ent).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &ent, nil
}

func (r *entitlementRepository) SyncLimitForTest(ctx context.Context, testID uint, limit *int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Entitlement{}).
		Where("test_id = ?", testID).
		Update("quota_limit", limit)
	return res.RowsAffected, res.Error
}

func (r *entitlementRepository) DecrementLimit(ctx context.Context, userID, testID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Entitlement{}).
		Where("user_id = ? AND test_id = ? AND quota_limit > 0", userID, testID).
		Updates(map[string]any{
			"quota_limit": gorm.Expr("quota_limit - 1"),
			"status":      model.EntitlementActive,
		})
	return res.RowsAffected > 0, res.Error
}
