package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/lshigami/jlpt-assessment/internal/localization"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"github.com/lshigami/jlpt-assessment/internal/repository"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/lshigami/jlpt-assessment/internal/service")

// SessionService owns the attempt lifecycle of test-taking sessions.
type SessionService interface {
	StartPlacementSession(ctx context.Context, userID, testID uint, language string) (*dto.PlacementSessionResponseDTO, error)
	StartLessonReviewSession(ctx context.Context, userID, testID uint, language string) (*dto.LessonReviewSessionResponseDTO, error)
	DrawByLevel(ctx context.Context, testID uint, query dto.LevelDrawQuery) (*dto.LevelDrawResponseDTO, error)
}

type sessionService struct {
	testRepo        repository.TestRepository
	entitlementRepo repository.EntitlementRepository
	attemptRepo     repository.AttemptRepository
	pool            repository.ContentPool
	localizer       *localization.Localizer
	newRand         RandFactory
}

func NewSessionService(
	testRepo repository.TestRepository,
	entitlementRepo repository.EntitlementRepository,
	attemptRepo repository.AttemptRepository,
	pool repository.ContentPool,
	localizer *localization.Localizer,
	newRand RandFactory,
) SessionService {
	return &sessionService{
		testRepo:        testRepo,
		entitlementRepo: entitlementRepo,
		attemptRepo:     attemptRepo,
		pool:            pool,
		localizer:       localizer,
		newRand:         newRand,
	}
}

// session is the language-independent result of starting a session.
type session struct {
	attempt *model.Attempt
	reused  bool
	batch   *Batch
}

func (s *sessionService) StartPlacementSession(ctx context.Context, userID, testID uint, language string) (*dto.PlacementSessionResponseDTO, error) {
	sess, err := s.startSession(ctx, userID, testID, model.TestKindPlacement)
	if err != nil {
		return nil, err
	}
	d := sess.batch.Distribution
	return &dto.PlacementSessionResponseDTO{
		AttemptID: sess.attempt.ID,
		Questions: s.present(ctx, sess.batch.Questions, language, false),
		Distribution: dto.PlacementDistributionDTO{
			Level5: d.Achieved("level5"),
			Level4: d.Achieved("level4"),
			Level3: d.Achieved("level3"),
			Total:  d.Total,
		},
	}, nil
}

func (s *sessionService) StartLessonReviewSession(ctx context.Context, userID, testID uint, language string) (*dto.LessonReviewSessionResponseDTO, error) {
	sess, err := s.startSession(ctx, userID, testID, model.TestKindLessonReview)
	if err != nil {
		return nil, err
	}
	d := sess.batch.Distribution
	return &dto.LessonReviewSessionResponseDTO{
		AttemptID: sess.attempt.ID,
		Questions: s.present(ctx, sess.batch.Questions, language, false),
		Distribution: dto.LessonReviewDistributionDTO{
			Vocabulary: d.Achieved(kindBucketName(model.ContentKindVocabulary)),
			Grammar:    d.Achieved(kindBucketName(model.ContentKindGrammar)),
			Kanji:      d.Achieved(kindBucketName(model.ContentKindKanji)),
			Total:      d.Total,
		},
	}, nil
}

// DrawByLevel samples without touching attempts. Correctness flags are
// blanked in the response.
func (s *sessionService) DrawByLevel(ctx context.Context, testID uint, query dto.LevelDrawQuery) (*dto.LevelDrawResponseDTO, error) {
	if query.Level < 1 || query.Level > 5 {
		return nil, apperror.Validation("level must be between 1 and 5, got %d", query.Level)
	}
	if query.Count < 1 {
		return nil, apperror.Validation("count must be positive, got %d", query.Count)
	}
	if _, err := s.testRepo.FindByID(ctx, testID); err != nil {
		return nil, err
	}

	pool, err := s.loadPool(ctx, testID)
	if err != nil {
		return nil, err
	}
	batch, err := Sample(s.newRand(), *pool, LevelDrawStrategy(query.Level, query.Count))
	if err != nil {
		return nil, err
	}
	return &dto.LevelDrawResponseDTO{
		Questions: s.present(ctx, batch.Questions, query.Language, true),
		Level:     query.Level,
		Requested: query.Count,
		Count:     batch.Distribution.Total,
	}, nil
}

// startSession verifies the test and the entitlement, samples the batch,
// then reuses the live attempt or creates one. Sampling runs before any
// write so a failed draw leaves the attempt state untouched. The quota is
// never consumed here.
func (s *sessionService) startSession(ctx context.Context, userID, testID uint, expected model.TestKind) (_ *session, err error) {
	ctx, span := tracer.Start(ctx, "session.start")
	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("test.id", int64(testID)),
		attribute.String("test.kind", string(expected)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.Kind != expected {
		return nil, apperror.Validation("test %d is a %s test, expected %s", testID, test.Kind, expected)
	}

	ent, err := s.entitlementRepo.FindByUserAndTest(ctx, userID, testID)
	if err != nil {
		return nil, fmt.Errorf("error loading entitlement: %w", err)
	}
	if ent == nil {
		return nil, &apperror.NotFoundError{Resource: "entitlement", Message: fmt.Sprintf("user %d is not entitled to test %d", userID, testID)}
	}

	strategy, err := StrategyForTestKind(test.Kind)
	if err != nil {
		return nil, err
	}
	pool, err := s.loadPool(ctx, testID)
	if err != nil {
		return nil, err
	}
	batch, err := Sample(s.newRand(), *pool, strategy)
	if err != nil {
		log.Warn().Err(err).Uint("testID", testID).Str("strategy", strategy.Name).Msg("Session sampling failed")
		return nil, err
	}

	attempt, reused, err := s.acquireAttempt(ctx, userID, testID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("userID", userID).
		Uint("testID", testID).
		Uint("attemptID", attempt.ID).
		Bool("reused", reused).
		Int("questions", batch.Distribution.Total).
		Msg("Session started")
	return &session{attempt: attempt, reused: reused, batch: batch}, nil
}

// acquireAttempt resumes the latest attempt when it is still in progress,
// clearing its answer logs, and otherwise creates a new one. Creation is a
// conditional insert; losing the race to a concurrent request resumes the
// winner's attempt instead of creating a second live one.
func (s *sessionService) acquireAttempt(ctx context.Context, userID, testID uint) (*model.Attempt, bool, error) {
	latest, err := s.attemptRepo.FindLatest(ctx, userID, testID)
	if err != nil {
		return nil, false, fmt.Errorf("error loading latest attempt: %w", err)
	}
	if latest != nil && latest.Status == model.AttemptInProgress {
		if err := s.resetProgress(ctx, latest); err != nil {
			return nil, false, err
		}
		return latest, true, nil
	}

	created, err := s.attemptRepo.CreateLive(ctx, userID, testID)
	if err == nil {
		return created, false, nil
	}
	if !errors.Is(err, repository.ErrLiveAttemptExists) {
		return nil, false, fmt.Errorf("failed to create attempt: %w", err)
	}

	live, err := s.attemptRepo.FindLive(ctx, userID, testID)
	if err != nil {
		return nil, false, fmt.Errorf("error loading live attempt: %w", err)
	}
	if live == nil {
		return nil, false, fmt.Errorf("live attempt for user %d and test %d vanished after conflict", userID, testID)
	}
	if err := s.resetProgress(ctx, live); err != nil {
		return nil, false, err
	}
	return live, true, nil
}

func (s *sessionService) resetProgress(ctx context.Context, attempt *model.Attempt) error {
	n, err := s.attemptRepo.DeleteAnswerLogs(ctx, attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to reset attempt %d: %w", attempt.ID, err)
	}
	log.Info().Uint("attemptID", attempt.ID).Int64("answerLogs", n).Msg("Resuming in-progress attempt, answer logs cleared")
	return nil
}

func (s *sessionService) loadPool(ctx context.Context, testID uint) (*Pool, error) {
	sets, err := s.testRepo.LinkedQuestionSets(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("error loading linked question sets: %w", err)
	}
	ids := make([]uint, 0, len(sets))
	for _, set := range sets {
		ids = append(ids, set.ID)
	}
	questions, err := s.pool.QuestionsBySet(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading questions: %w", err)
	}
	return &Pool{Sets: sets, Questions: questions}, nil
}

func (s *sessionService) present(ctx context.Context, questions []model.Question, language string, hideCorrectness bool) []dto.SessionQuestionDTO {
	loc := s.localizer.ForLanguage(ctx, language)
	keys := make([]string, 0, len(questions)*5)
	for _, q := range questions {
		keys = append(keys, q.TextKey)
		for _, a := range q.Answers {
			keys = append(keys, a.TextKey)
		}
	}
	loc.Prefetch(ctx, keys)

	out := make([]dto.SessionQuestionDTO, 0, len(questions))
	for _, q := range questions {
		answers := make([]dto.SessionAnswerDTO, 0, len(q.Answers))
		for _, a := range q.Answers {
			ans := dto.SessionAnswerDTO{ID: a.ID, Text: loc.Text(ctx, a.TextKey, a.Text)}
			if !hideCorrectness {
				correct := a.IsCorrect
				ans.IsCorrect = &correct
			}
			answers = append(answers, ans)
		}
		out = append(out, dto.SessionQuestionDTO{
			ID:            q.ID,
			Kind:          string(q.Kind),
			Level:         q.Level,
			Text:          loc.Text(ctx, q.TextKey, q.Text),
			Pronunciation: q.Pronunciation,
			AudioURL:      q.AudioURL,
			Answers:       answers,
		})
	}
	return out
}
