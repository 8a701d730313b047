package model

import "time"

// Entitlement is provisioned by enrollment outside this service. Limit
// mirrors the test's quota template: nil or 0 means unlimited.
type Entitlement struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	UserID    uint              `json:"user_id" gorm:"not null;uniqueIndex:idx_entitlements_user_test"`
	TestID    uint              `json:"test_id" gorm:"not null;uniqueIndex:idx_entitlements_user_test"`
	Status    EntitlementStatus `json:"status" gorm:"type:varchar(16);not null;default:'NOT_STARTED'"`
	Limit     *int              `json:"limit,omitempty" gorm:"column:quota_limit"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (e *Entitlement) Unlimited() bool {
	return e.Limit == nil || *e.Limit == 0
}
