package model

import "time"

type QuestionSet struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	Title     string      `json:"title" gorm:"not null"`
	Kind      ContentKind `json:"kind" gorm:"type:varchar(32);not null;index"`
	Status    TestStatus  `json:"status" gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	Level     *int        `json:"level,omitempty"` // 0 = mixed level
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// QuestionSetQuestion orders questions inside a set. The sampler reads
// Position but never writes it.
type QuestionSetQuestion struct {
	QuestionSetID uint     `gorm:"primaryKey;autoIncrement:false"`
	QuestionID    uint     `gorm:"primaryKey;autoIncrement:false;index"`
	Position      int      `gorm:"not null;default:0"`
	Question      Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE;"`
}
