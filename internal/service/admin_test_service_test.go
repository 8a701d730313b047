package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"github.com/lshigami/jlpt-assessment/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminActor = Actor{UserID: 1, IsAdmin: true}
	author     = Actor{UserID: 7}
	stranger   = Actor{UserID: 8}
)

func linkedIDs(t *testing.T, f *fixture, testID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, f.db.Model(&model.TestQuestionSet{}).Where("test_id = ?", testID).Order("question_set_id").Pluck("question_set_id", &ids).Error)
	return ids
}

func TestCreateTestWithSetsAndTranslations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vocab := testutil.SeedQuestionSet(t, f.db, model.ContentKindVocabulary, nil)
	grammar := testutil.SeedQuestionSet(t, f.db, model.ContentKindGrammar, nil)

	resp, err := f.admin.CreateTest(ctx, author, dto.TestCreateDTO{
		Title:      "Lesson 1 review",
		Kind:       string(model.TestKindLessonReview),
		Limit:      testutil.Ptr(3),
		TestSetIDs: []uint{vocab.ID, grammar.ID},
		Translations: []dto.TranslationDTO{
			{Field: "title", LanguageCode: "en", Value: "Lesson 1 review"},
			{Field: "title", LanguageCode: "vi", Value: "Ôn tập bài 1"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.TestKindLessonReview), resp.Kind)
	assert.Equal(t, string(model.TestStatusDraft), resp.Status)
	assert.Equal(t, author.UserID, resp.OwnerID)
	require.NotNil(t, resp.Limit)
	assert.Equal(t, 3, *resp.Limit)
	assert.Len(t, resp.QuestionSets, 2)

	var count int64
	require.NoError(t, f.db.Model(&model.Translation{}).Where("key = ?", fmt.Sprintf("test.%d.title", resp.ID)).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateTestRollsBackOnViolation(t *testing.T) {
	f := newFixture(t)
	listening := testutil.SeedQuestionSet(t, f.db, model.ContentKindListening, nil)

	_, err := f.admin.CreateTest(context.Background(), author, dto.TestCreateDTO{
		Title:        "Broken review",
		Kind:         string(model.TestKindLessonReview),
		TestSetIDs:   []uint{listening.ID},
		Translations: []dto.TranslationDTO{{Field: "title", LanguageCode: "en", Value: "Broken"}},
	})
	var violation *apperror.CompositionViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, RuleLessonReviewKind, violation.Rule)

	var tests, translations int64
	require.NoError(t, f.db.Model(&model.Test{}).Count(&tests).Error)
	require.NoError(t, f.db.Model(&model.Translation{}).Count(&translations).Error)
	assert.Zero(t, tests)
	assert.Zero(t, translations)
}

func TestCreateTestRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.admin.CreateTest(context.Background(), author, dto.TestCreateDTO{Title: "x", Kind: "ESSAY"})
	assert.Equal(t, 400, apperror.Status(err))
}

func TestAttachQuestionSetsIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	test := testutil.SeedTest(t, f.db, model.TestKindLessonReview, author.UserID)
	kanji := testutil.SeedQuestionSet(t, f.db, model.ContentKindKanji, nil)
	vocab := testutil.SeedQuestionSet(t, f.db, model.ContentKindVocabulary, nil)
	reading := testutil.SeedQuestionSet(t, f.db, model.ContentKindReading, nil)

	_, err := f.admin.AttachQuestionSets(ctx, author, test.ID, []uint{kanji.ID, vocab.ID, reading.ID})
	var violation *apperror.CompositionViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, []uint{reading.ID}, violation.QuestionSetIDs)
	assert.Empty(t, linkedIDs(t, f, test.ID))

	resp, err := f.admin.AttachQuestionSets(ctx, author, test.ID, []uint{kanji.ID, vocab.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{kanji.ID, vocab.ID}, resp.TestSetIDs)
	assert.ElementsMatch(t, []uint{kanji.ID, vocab.ID}, linkedIDs(t, f, test.ID))

	_, err = f.admin.AttachQuestionSets(ctx, author, test.ID, []uint{kanji.ID})
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, RuleAlreadyLinked, violation.Rule)
}

func TestAttachQuestionSetsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	test := testutil.SeedTest(t, f.db, model.TestKindPlacement, author.UserID)
	set := testutil.SeedQuestionSet(t, f.db, model.ContentKindKanji, nil)

	_, err := f.admin.AttachQuestionSets(ctx, author, test.ID, []uint{set.ID, set.ID})
	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation))

	_, err = f.admin.AttachQuestionSets(ctx, author, test.ID, []uint{set.ID, 999})
	var notFound *apperror.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Empty(t, linkedIDs(t, f, test.ID))

	_, err = f.admin.AttachQuestionSets(ctx, author, 999, []uint{set.ID})
	assert.True(t, errors.As(err, &notFound))

	_, err = f.admin.AttachQuestionSets(ctx, stranger, test.ID, []uint{set.ID})
	var permission *apperror.PermissionError
	assert.True(t, errors.As(err, &permission))

	_, err = f.admin.AttachQuestionSets(ctx, adminActor, test.ID, []uint{set.ID})
	assert.NoError(t, err)
}

func TestUpdateTestKindChangeChecksLinkedSets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	test := testutil.SeedTest(t, f.db, model.TestKindPlacement, author.UserID)
	vocab := testutil.SeedQuestionSet(t, f.db, model.ContentKindVocabulary, nil)
	listening := testutil.SeedQuestionSet(t, f.db, model.ContentKindListening, nil)
	testutil.LinkQuestionSets(t, f.db, test.ID, vocab, listening)

	_, err := f.admin.UpdateTest(ctx, author, test.ID, dto.TestUpdateDTO{Kind: testutil.Ptr(string(model.TestKindLessonReview))})
	var violation *apperror.CompositionViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, []uint{listening.ID}, violation.QuestionSetIDs)

	require.NoError(t, f.admin.DetachQuestionSet(ctx, author, test.ID, listening.ID))
	resp, err := f.admin.UpdateTest(ctx, author, test.ID, dto.TestUpdateDTO{Kind: testutil.Ptr(string(model.TestKindLessonReview))})
	require.NoError(t, err)
	assert.Equal(t, string(model.TestKindLessonReview), resp.Kind)
}

func TestUpdateTestSyncsEntitlementLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	test := testutil.SeedTest(t, f.db, model.TestKindPlacement, author.UserID)
	other := testutil.SeedTest(t, f.db, model.TestKindPlacement, author.UserID)
	testutil.SeedEntitlement(t, f.db, 100, test.ID, nil)
	testutil.SeedEntitlement(t, f.db, 101, test.ID, testutil.Ptr(1))
	untouched := testutil.SeedEntitlement(t, f.db, 100, other.ID, testutil.Ptr(9))

	_, err := f.admin.UpdateTest(ctx, author, test.ID, dto.TestUpdateDTO{Limit: testutil.Ptr(5)})
	require.NoError(t, err)

	var ents []model.Entitlement
	require.NoError(t, f.db.Where("test_id = ?", test.ID).Find(&ents).Error)
	require.Len(t, ents, 2)
	for _, e := range ents {
		require.NotNil(t, e.Limit)
		assert.Equal(t, 5, *e.Limit)
	}

	var reloaded model.Entitlement
	require.NoError(t, f.db.First(&reloaded, untouched.ID).Error)
	assert.Equal(t, 9, *reloaded.Limit)

	_, err = f.admin.UpdateTest(ctx, author, test.ID, dto.TestUpdateDTO{ClearLimit: true})
	require.NoError(t, err)
	require.NoError(t, f.db.Where("test_id = ?", test.ID).Find(&ents).Error)
	for _, e := range ents {
		assert.Nil(t, e.Limit)
	}
}

func TestUpdateStatusAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	test := testutil.SeedTest(t, f.db, model.TestKindQuiz, author.UserID)
	set := testutil.SeedQuestionSet(t, f.db, model.ContentKindGeneral, nil)
	testutil.LinkQuestionSets(t, f.db, test.ID, set)

	_, err := f.admin.UpdateStatus(ctx, stranger, test.ID, string(model.TestStatusInactive))
	assert.Equal(t, 403, apperror.Status(err))

	resp, err := f.admin.UpdateStatus(ctx, author, test.ID, string(model.TestStatusInactive))
	require.NoError(t, err)
	assert.Equal(t, string(model.TestStatusInactive), resp.Status)

	require.NoError(t, f.admin.DeleteTest(ctx, author, test.ID))
	_, err = f.admin.GetTest(ctx, test.ID)
	assert.Equal(t, 404, apperror.Status(err))
	assert.Empty(t, linkedIDs(t, f, test.ID))

	var sets int64
	require.NoError(t, f.db.Model(&model.QuestionSet{}).Count(&sets).Error)
	assert.EqualValues(t, 1, sets, "deleting a test keeps its question sets")
}

func TestDetachQuestionSetNotLinked(t *testing.T) {
	f := newFixture(t)
	test := testutil.SeedTest(t, f.db, model.TestKindQuiz, author.UserID)
	err := f.admin.DetachQuestionSet(context.Background(), author, test.ID, 42)
	assert.Equal(t, 404, apperror.Status(err))
}
