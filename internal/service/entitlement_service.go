package service

import (
	"context"
	"fmt"

	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/lshigami/jlpt-assessment/internal/repository"
	"github.com/rs/zerolog/log"
)

// EntitlementService exposes the quota counter to the scoring flow. Session
// start never calls it.
type EntitlementService interface {
	ConsumeQuota(ctx context.Context, userID, testID uint) (*dto.QuotaResponseDTO, error)
}

type entitlementService struct {
	entitlementRepo repository.EntitlementRepository
}

func NewEntitlementService(entitlementRepo repository.EntitlementRepository) EntitlementService {
	return &entitlementService{entitlementRepo: entitlementRepo}
}

func (s *entitlementService) ConsumeQuota(ctx context.Context, userID, testID uint) (*dto.QuotaResponseDTO, error) {
	ent, err := s.entitlementRepo.FindByUserAndTest(ctx, userID, testID)
	if err != nil {
		return nil, fmt.Errorf("error loading entitlement: %w", err)
	}
	if ent == nil {
		return nil, &apperror.NotFoundError{Resource: "entitlement", Message: fmt.Sprintf("user %d is not entitled to test %d", userID, testID)}
	}
	if ent.Unlimited() {
		return &dto.QuotaResponseDTO{TestID: testID, Unlimited: true}, nil
	}

	consumed, err := s.entitlementRepo.DecrementLimit(ctx, userID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement quota: %w", err)
	}
	after, err := s.entitlementRepo.FindByUserAndTest(ctx, userID, testID)
	if err != nil {
		return nil, fmt.Errorf("error reloading entitlement: %w", err)
	}
	if after == nil {
		return nil, apperror.NotFound("entitlement", testID)
	}

	log.Info().Uint("userID", userID).Uint("testID", testID).Bool("consumed", consumed).Interface("remaining", after.Limit).Msg("Quota consumed")
	return &dto.QuotaResponseDTO{
		TestID:    testID,
		Consumed:  consumed,
		Unlimited: after.Unlimited(),
		Remaining: after.Limit,
	}, nil
}
