package dto

import (
	"time"

	"github.com/lshigami/jlpt-assessment/internal/localization"
)

type QuestionSetResponseDTO struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
	Level *int   `json:"level,omitempty"`
}

type TestResponseDTO struct {
	ID           uint                     `json:"id"`
	Title        string                   `json:"title"`
	Description  string                   `json:"description,omitempty"`
	Kind         string                   `json:"kind"`
	Status       string                   `json:"status"`
	Limit        *int                     `json:"limit,omitempty"`
	OwnerID      uint                     `json:"owner_id"`
	QuestionSets []QuestionSetResponseDTO `json:"question_sets"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

type AttachTestSetsResponseDTO struct {
	TestID     uint   `json:"test_id"`
	TestSetIDs []uint `json:"testSetIds"`
}

// SessionAnswerDTO is one answer option. IsCorrect is serialized even when
// nil so every endpoint returns the same shape.
type SessionAnswerDTO struct {
	ID        uint              `json:"id"`
	Text      localization.Text `json:"text" swaggertype:"string"`
	IsCorrect *bool             `json:"is_correct"`
}

type SessionQuestionDTO struct {
	ID            uint               `json:"id"`
	Kind          string             `json:"kind"`
	Level         int                `json:"level"`
	Text          localization.Text  `json:"text" swaggertype:"string"`
	Pronunciation *string            `json:"pronunciation,omitempty"`
	AudioURL      *string            `json:"audio_url,omitempty"`
	Answers       []SessionAnswerDTO `json:"answers"`
}

type PlacementDistributionDTO struct {
	Level5 int `json:"level5"`
	Level4 int `json:"level4"`
	Level3 int `json:"level3"`
	Total  int `json:"total"`
}

type PlacementSessionResponseDTO struct {
	AttemptID    uint                     `json:"attemptId"`
	Questions    []SessionQuestionDTO     `json:"questions"`
	Distribution PlacementDistributionDTO `json:"distribution"`
}

type LessonReviewDistributionDTO struct {
	Vocabulary int `json:"vocabulary"`
	Grammar    int `json:"grammar"`
	Kanji      int `json:"kanji"`
	Total      int `json:"total"`
}

type LessonReviewSessionResponseDTO struct {
	AttemptID    uint                        `json:"attemptId"`
	Questions    []SessionQuestionDTO        `json:"questions"`
	Distribution LessonReviewDistributionDTO `json:"distribution"`
}

type LevelDrawResponseDTO struct {
	Questions []SessionQuestionDTO `json:"questions"`
	Level     int                  `json:"level"`
	Requested int                  `json:"requested"`
	Count     int                  `json:"count"`
}

type QuotaResponseDTO struct {
	TestID    uint `json:"test_id"`
	Consumed  bool `json:"consumed"`
	Unlimited bool `json:"unlimited"`
	Remaining *int `json:"remaining,omitempty"`
}

type ErrorResponse struct {
	Message        string   `json:"message"`
	Details        []string `json:"details,omitempty"`
	Rule           string   `json:"rule,omitempty"`
	QuestionSetIDs []uint   `json:"question_set_ids,omitempty"`
}
