package service

import (
	"testing"

	"github.com/lshigami/jlpt-assessment/internal/localization"
	"github.com/lshigami/jlpt-assessment/internal/repository"
	"github.com/lshigami/jlpt-assessment/internal/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	admin       AdminTestService
	sessions    SessionService
	entitlement EntitlementService
	attempts    repository.AttemptRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)

	testRepo := repository.NewTestRepository(db)
	entRepo := repository.NewEntitlementRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	trRepo := repository.NewTranslationRepository(db)
	resolver := localization.NewDBResolver(trRepo)

	return &fixture{
		db:    db,
		admin: NewAdminTestService(testRepo, repository.NewQuestionSetRepository(db), entRepo, trRepo, db),
		sessions: NewSessionService(
			testRepo,
			entRepo,
			attemptRepo,
			repository.NewContentPool(db),
			localization.NewLocalizer(resolver, resolver),
			SeededRandFactory(1),
		),
		entitlement: NewEntitlementService(entRepo),
		attempts:    attemptRepo,
	}
}
