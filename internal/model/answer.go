package model

import (
	"time"
)

type Answer struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null;default:false"`
	Text       string    `json:"text" gorm:"type:text;not null"` // source-language text
	TextKey    string    `json:"text_key" gorm:"index"`
	Position   int       `json:"position" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
