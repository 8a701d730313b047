package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"github.com/lshigami/jlpt-assessment/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of an admin operation.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

type AdminTestService interface {
	CreateTest(ctx context.Context, actor Actor, req dto.TestCreateDTO) (*dto.TestResponseDTO, error)
	GetTest(ctx context.Context, testID uint) (*dto.TestResponseDTO, error)
	UpdateTest(ctx context.Context, actor Actor, testID uint, req dto.TestUpdateDTO) (*dto.TestResponseDTO, error)
	UpdateStatus(ctx context.Context, actor Actor, testID uint, status string) (*dto.TestResponseDTO, error)
	DeleteTest(ctx context.Context, actor Actor, testID uint) error
	AttachQuestionSets(ctx context.Context, actor Actor, testID uint, questionSetIDs []uint) (*dto.AttachTestSetsResponseDTO, error)
	DetachQuestionSet(ctx context.Context, actor Actor, testID, questionSetID uint) error
}

type adminTestService struct {
	testRepo        repository.TestRepository
	questionSetRepo repository.QuestionSetRepository
	entitlementRepo repository.EntitlementRepository
	translationRepo repository.TranslationRepository
	db              *gorm.DB
}

func NewAdminTestService(
	testRepo repository.TestRepository,
	questionSetRepo repository.QuestionSetRepository,
	entitlementRepo repository.EntitlementRepository,
	translationRepo repository.TranslationRepository,
	db *gorm.DB,
) AdminTestService {
	return &adminTestService{
		testRepo:        testRepo,
		questionSetRepo: questionSetRepo,
		entitlementRepo: entitlementRepo,
		translationRepo: translationRepo,
		db:              db,
	}
}

func (s *adminTestService) CreateTest(ctx context.Context, actor Actor, req dto.TestCreateDTO) (*dto.TestResponseDTO, error) {
	kind, err := model.ParseTestKind(req.Kind)
	if err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}
	status := model.TestStatusDraft
	if req.Status != "" {
		status = model.TestStatus(req.Status)
	}
	setIDs, err := uniqueIDs(req.TestSetIDs)
	if err != nil {
		return nil, err
	}

	test := model.Test{
		Title:       req.Title,
		Description: req.Description,
		Kind:        kind,
		Status:      status,
		Limit:       req.Limit,
		OwnerID:     actor.UserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.testRepo.WithTx(tx).Create(ctx, &test); err != nil {
			return fmt.Errorf("failed to create test record: %w", err)
		}

		test.TitleKey = fmt.Sprintf("test.%d.title", test.ID)
		test.DescriptionKey = fmt.Sprintf("test.%d.description", test.ID)
		if err := s.testRepo.WithTx(tx).Update(ctx, &test); err != nil {
			return fmt.Errorf("failed to set translation keys: %w", err)
		}

		translations := make([]model.Translation, 0, len(req.Translations))
		for _, tr := range req.Translations {
			key := test.TitleKey
			if tr.Field == "description" {
				key = test.DescriptionKey
			}
			translations = append(translations, model.Translation{Key: key, LanguageCode: tr.LanguageCode, Value: tr.Value})
		}
		if err := s.translationRepo.WithTx(tx).CreateBatch(ctx, translations); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Validation("duplicate translation for the same field and language")
			}
			return fmt.Errorf("failed to create translations: %w", err)
		}

		if len(setIDs) > 0 {
			if _, err := s.attachInTx(ctx, tx, &test, setIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("kind", req.Kind).Msg("Admin CreateTest: transaction rolled back")
		return nil, err
	}

	log.Info().Uint("testID", test.ID).Str("kind", string(kind)).Int("questionSets", len(setIDs)).Msg("Test created")
	return s.GetTest(ctx, test.ID)
}

func (s *adminTestService) GetTest(ctx context.Context, testID uint) (*dto.TestResponseDTO, error) {
	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	sets, err := s.testRepo.LinkedQuestionSets(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("error loading linked question sets: %w", err)
	}
	test.QuestionSets = sets
	return toTestResponse(test)
}

func (s *adminTestService) UpdateTest(ctx context.Context, actor Actor, testID uint, req dto.TestUpdateDTO) (*dto.TestResponseDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		testRepo := s.testRepo.WithTx(tx)
		test, err := testRepo.FindByIDForUpdate(ctx, testID)
		if err != nil {
			return err
		}
		if err := authorize(actor, test); err != nil {
			return err
		}

		if req.Kind != nil && *req.Kind != string(test.Kind) {
			newKind, err := model.ParseTestKind(*req.Kind)
			if err != nil {
				return apperror.Validation("%s", err.Error())
			}
			linked, err := testRepo.LinkedQuestionSets(ctx, testID)
			if err != nil {
				return fmt.Errorf("error loading linked question sets: %w", err)
			}
			if err := ValidateKindChange(newKind, linked); err != nil {
				log.Warn().Err(err).Uint("testID", testID).Str("newKind", string(newKind)).Msg("Test kind change rejected")
				return err
			}
			test.Kind = newKind
		}
		if req.Title != nil {
			test.Title = *req.Title
		}
		if req.Description != nil {
			test.Description = *req.Description
		}
		if req.Status != nil {
			test.Status = model.TestStatus(*req.Status)
		}

		limitChanged := false
		switch {
		case req.ClearLimit:
			limitChanged = test.Limit != nil
			test.Limit = nil
		case req.Limit != nil:
			limitChanged = test.Limit == nil || *test.Limit != *req.Limit
			test.Limit = req.Limit
		}

		if err := testRepo.Update(ctx, test); err != nil {
			return fmt.Errorf("failed to update test: %w", err)
		}

		if limitChanged {
			n, err := s.entitlementRepo.WithTx(tx).SyncLimitForTest(ctx, testID, test.Limit)
			if err != nil {
				return fmt.Errorf("failed to sync entitlement limits: %w", err)
			}
			log.Info().Uint("testID", testID).Int64("entitlements", n).Msg("Entitlement limits synced with test quota")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTest(ctx, testID)
}

func (s *adminTestService) UpdateStatus(ctx context.Context, actor Actor, testID uint, status string) (*dto.TestResponseDTO, error) {
	return s.UpdateTest(ctx, actor, testID, dto.TestUpdateDTO{Status: &status})
}

func (s *adminTestService) DeleteTest(ctx context.Context, actor Actor, testID uint) error {
	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return err
	}
	if err := authorize(actor, test); err != nil {
		return err
	}
	if err := s.testRepo.Delete(ctx, testID); err != nil {
		return err
	}
	log.Info().Uint("testID", testID).Msg("Test deleted")
	return nil
}

func (s *adminTestService) AttachQuestionSets(ctx context.Context, actor Actor, testID uint, questionSetIDs []uint) (*dto.AttachTestSetsResponseDTO, error) {
	ids, err := uniqueIDs(questionSetIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperror.Validation("testSetIds must not be empty")
	}

	var added []uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		test, err := s.testRepo.WithTx(tx).FindByIDForUpdate(ctx, testID)
		if err != nil {
			return err
		}
		if err := authorize(actor, test); err != nil {
			return err
		}
		added, err = s.attachInTx(ctx, tx, test, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("testID", testID).Interface("questionSetIDs", added).Msg("Question sets attached")
	return &dto.AttachTestSetsResponseDTO{TestID: testID, TestSetIDs: added}, nil
}

// attachInTx validates and writes the links inside tx. The caller must hold
// the test row lock.
func (s *adminTestService) attachInTx(ctx context.Context, tx *gorm.DB, test *model.Test, ids []uint) ([]uint, error) {
	proposed, err := s.questionSetRepo.WithTx(tx).FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading question sets: %w", err)
	}
	if missing := missingIDs(ids, proposed); len(missing) > 0 {
		return nil, &apperror.NotFoundError{Resource: "question set", ID: missing, Message: fmt.Sprintf("question sets %v not found", missing)}
	}

	testRepo := s.testRepo.WithTx(tx)
	existing, err := testRepo.LinkedQuestionSets(ctx, test.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading linked question sets: %w", err)
	}
	if err := ValidateAttach(test.Kind, existing, proposed); err != nil {
		log.Warn().Err(err).Uint("testID", test.ID).Str("kind", string(test.Kind)).Msg("Question set attach rejected")
		return nil, err
	}
	if err := testRepo.AttachQuestionSets(ctx, test.ID, ids); err != nil {
		return nil, fmt.Errorf("failed to link question sets: %w", err)
	}
	return ids, nil
}

func (s *adminTestService) DetachQuestionSet(ctx context.Context, actor Actor, testID, questionSetID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		testRepo := s.testRepo.WithTx(tx)
		test, err := testRepo.FindByIDForUpdate(ctx, testID)
		if err != nil {
			return err
		}
		if err := authorize(actor, test); err != nil {
			return err
		}
		removed, err := testRepo.DetachQuestionSet(ctx, testID, questionSetID)
		if err != nil {
			return fmt.Errorf("failed to unlink question set: %w", err)
		}
		if !removed {
			return &apperror.NotFoundError{Message: fmt.Sprintf("question set %d is not linked to test %d", questionSetID, testID)}
		}
		return nil
	})
}

func authorize(actor Actor, test *model.Test) error {
	if actor.IsAdmin || actor.UserID == test.OwnerID {
		return nil
	}
	return apperror.Permission("user %d does not own test %d", actor.UserID, test.ID)
}

func uniqueIDs(ids []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			return nil, apperror.Validation("question set id must be positive")
		}
		if seen[id] {
			return nil, apperror.Validation("question set %d is listed more than once", id)
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func missingIDs(want []uint, found []model.QuestionSet) []uint {
	have := make(map[uint]bool, len(found))
	for _, s := range found {
		have[s.ID] = true
	}
	var missing []uint
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func toTestResponse(test *model.Test) (*dto.TestResponseDTO, error) {
	var resp dto.TestResponseDTO
	if err := copier.Copy(&resp, test); err != nil {
		log.Error().Err(err).Msg("Failed to copy Test model to TestResponseDTO")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	if resp.QuestionSets == nil {
		resp.QuestionSets = []dto.QuestionSetResponseDTO{}
	}
	return &resp, nil
}
