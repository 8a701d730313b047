package model

import (
	"time"
)

// Attempt is one user's run through a test. At most one IN_PROGRESS row
// exists per (user, test); the database enforces it with idx_attempts_live.
type Attempt struct {
	ID          uint          `gorm:"primarykey" json:"id"`
	UserID      uint          `json:"user_id" gorm:"not null;index:idx_attempts_user_test"`
	TestID      uint          `json:"test_id" gorm:"not null;index:idx_attempts_user_test"`
	Test        Test          `json:"test,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE;"`
	Status      AttemptStatus `json:"status" gorm:"type:varchar(16);not null;default:'IN_PROGRESS'"`
	Score       *float64      `json:"score,omitempty"`
	Duration    *int          `json:"duration,omitempty"` // seconds
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	AnswerLogs  []AnswerLog   `json:"answer_logs,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
