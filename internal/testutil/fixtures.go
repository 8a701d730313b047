package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/lshigami/jlpt-assessment/internal/model"
	"gorm.io/gorm"
)

func Ptr[T any](v T) *T { return &v }

func mustCreate(tb testing.TB, db *gorm.DB, v any) {
	tb.Helper()
	if err := db.Create(v).Error; err != nil {
		tb.Fatalf("seed %T: %v", v, err)
	}
}

func SeedLanguage(tb testing.TB, db *gorm.DB, code, name string) model.Language {
	tb.Helper()
	lang := model.Language{Code: code, Name: name}
	mustCreate(tb, db, &lang)
	return lang
}

func SeedTranslation(tb testing.TB, db *gorm.DB, key, languageCode, value string) model.Translation {
	tb.Helper()
	tr := model.Translation{Key: key, LanguageCode: languageCode, Value: value}
	mustCreate(tb, db, &tr)
	return tr
}

// SeedTest creates an ACTIVE test owned by ownerID with an unlimited quota.
func SeedTest(tb testing.TB, db *gorm.DB, kind model.TestKind, ownerID uint) *model.Test {
	tb.Helper()
	test := &model.Test{
		Title:   fmt.Sprintf("%s test", kind),
		Kind:    kind,
		Status:  model.TestStatusActive,
		OwnerID: ownerID,
	}
	if err := db.Omit("QuestionSets").Create(test).Error; err != nil {
		tb.Fatalf("seed test: %v", err)
	}
	return test
}

func SeedQuestionSet(tb testing.TB, db *gorm.DB, kind model.ContentKind, level *int) *model.QuestionSet {
	tb.Helper()
	set := &model.QuestionSet{
		Title:  fmt.Sprintf("%s set", kind),
		Kind:   kind,
		Status: model.TestStatusActive,
		Level:  level,
	}
	mustCreate(tb, db, set)
	return set
}

// SeedQuestions adds n questions of kind and level to set, each with four
// answers of which the first is correct.
func SeedQuestions(tb testing.TB, db *gorm.DB, set *model.QuestionSet, kind model.ContentKind, level, n int) []model.Question {
	tb.Helper()
	var existing int64
	if err := db.Model(&model.QuestionSetQuestion{}).Where("question_set_id = ?", set.ID).Count(&existing).Error; err != nil {
		tb.Fatalf("count set questions: %v", err)
	}

	out := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		q := model.Question{
			Kind:  kind,
			Level: level,
			Text:  fmt.Sprintf("%s N%d question %d", kind, level, i),
		}
		for j := 0; j < 4; j++ {
			q.Answers = append(q.Answers, model.Answer{
				IsCorrect: j == 0,
				Text:      fmt.Sprintf("answer %d", j),
				Position:  j,
			})
		}
		mustCreate(tb, db, &q)
		mustCreate(tb, db, &model.QuestionSetQuestion{
			QuestionSetID: set.ID,
			QuestionID:    q.ID,
			Position:      int(existing) + i,
		})
		out = append(out, q)
	}
	return out
}

// LinkQuestionSets links sets to test without running composition checks.
func LinkQuestionSets(tb testing.TB, db *gorm.DB, testID uint, sets ...*model.QuestionSet) {
	tb.Helper()
	for _, set := range sets {
		mustCreate(tb, db, &model.TestQuestionSet{TestID: testID, QuestionSetID: set.ID})
	}
}

func SeedEntitlement(tb testing.TB, db *gorm.DB, userID, testID uint, limit *int) *model.Entitlement {
	tb.Helper()
	ent := &model.Entitlement{
		UserID: userID,
		TestID: testID,
		Status: model.EntitlementNotStarted,
		Limit:  limit,
	}
	mustCreate(tb, db, ent)
	return ent
}

func SeedAttempt(tb testing.TB, db *gorm.DB, userID, testID uint, status model.AttemptStatus) *model.Attempt {
	tb.Helper()
	attempt := &model.Attempt{
		UserID:    userID,
		TestID:    testID,
		Status:    status,
		StartedAt: time.Now().UTC(),
	}
	if status == model.AttemptCompleted {
		attempt.CompletedAt = Ptr(time.Now().UTC())
	}
	if err := db.Omit("Test").Create(attempt).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return attempt
}

func SeedAnswerLogs(tb testing.TB, db *gorm.DB, attemptID uint, questions []model.Question) {
	tb.Helper()
	for _, q := range questions {
		mustCreate(tb, db, &model.AnswerLog{AttemptID: attemptID, QuestionID: q.ID, IsCorrect: Ptr(true)})
	}
}

func CountAnswerLogs(tb testing.TB, db *gorm.DB, attemptID uint) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(&model.AnswerLog{}).Where("attempt_id = ?", attemptID).Count(&n).Error; err != nil {
		tb.Fatalf("count answer logs: %v", err)
	}
	return n
}
