package model

import "time"

type Language struct {
	Code string `gorm:"primaryKey;type:varchar(16)" json:"code"`
	Name string `json:"name"`
}

type Translation struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Key          string    `json:"key" gorm:"not null;uniqueIndex:idx_translations_key_lang"`
	LanguageCode string    `json:"language_code" gorm:"type:varchar(16);not null;uniqueIndex:idx_translations_key_lang"`
	Value        string    `json:"value" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
