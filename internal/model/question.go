package model

import (
	"time"
)

type Question struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	Kind          ContentKind `json:"kind" gorm:"type:varchar(32);not null;index"`
	Level         int         `json:"level" gorm:"not null;index"` // 1-5
	Text          string      `json:"text" gorm:"type:text;not null"` // source-language text
	TextKey       string      `json:"text_key" gorm:"index"`
	AudioURL      *string     `json:"audio_url,omitempty"`
	Pronunciation *string     `json:"pronunciation,omitempty"`
	Answers       []Answer    `json:"answers,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
