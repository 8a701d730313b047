package dto

// TranslationDTO is one localized value for one field of a test.
type TranslationDTO struct {
	Field        string `json:"field" binding:"required,oneof=title description"`
	LanguageCode string `json:"language_code" binding:"required,min=2,max=16"`
	Value        string `json:"value" binding:"required"`
}

// TestCreateDTO creates a test, optionally with its first question sets and
// its translations, in one unit of work.
type TestCreateDTO struct {
	Title        string           `json:"title" binding:"required"`
	Description  string           `json:"description,omitempty"`
	Kind         string           `json:"kind" binding:"required"`
	Status       string           `json:"status,omitempty" binding:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
	Limit        *int             `json:"limit,omitempty" binding:"omitempty,min=0"`
	TestSetIDs   []uint           `json:"testSetIds,omitempty"`
	Translations []TranslationDTO `json:"translations,omitempty" binding:"omitempty,dive"`
}

// TestUpdateDTO carries the fields to change; nil fields are left alone.
type TestUpdateDTO struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Kind        *string `json:"kind,omitempty"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
	Limit       *int    `json:"limit,omitempty" binding:"omitempty,min=0"`
	// ClearLimit makes the quota unlimited; JSON cannot tell a null limit
	// from an absent one.
	ClearLimit bool `json:"clear_limit,omitempty"`
}

type TestStatusDTO struct {
	Status string `json:"status" binding:"required,oneof=DRAFT ACTIVE INACTIVE"`
}

type AttachTestSetsDTO struct {
	TestSetIDs []uint `json:"testSetIds" binding:"required,min=1"`
}
