package model

import "time"

// AnswerLog is a user's response to one question inside one attempt.
type AnswerLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	AttemptID  uint      `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	AnswerID   *uint     `json:"answer_id,omitempty"`
	IsCorrect  *bool     `json:"is_correct,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
