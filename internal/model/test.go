package model

import (
	"time"
)

type Test struct {
	ID             uint          `gorm:"primarykey" json:"id"`
	Title          string        `json:"title" gorm:"not null"`
	TitleKey       string        `json:"title_key" gorm:"index"`
	Description    string        `json:"description,omitempty"`
	DescriptionKey string        `json:"description_key,omitempty"`
	Kind           TestKind      `json:"kind" gorm:"type:varchar(32);not null;index"`
	Status         TestStatus    `json:"status" gorm:"type:varchar(16);not null;default:'DRAFT'"`
	Limit          *int          `json:"limit,omitempty" gorm:"column:quota_limit"` // nil = unlimited
	OwnerID        uint          `json:"owner_id" gorm:"not null;index"`
	QuestionSets   []QuestionSet `json:"question_sets,omitempty" gorm:"many2many:test_question_sets;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TestQuestionSet is the join row between a Test and a QuestionSet.
type TestQuestionSet struct {
	TestID        uint      `gorm:"primaryKey;autoIncrement:false"`
	QuestionSetID uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt     time.Time `json:"created_at"`
}
