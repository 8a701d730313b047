package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/jlpt-assessment/internal/controller"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/lshigami/jlpt-assessment/internal/service"
)

type UserTestController struct {
	sessionService     service.SessionService
	entitlementService service.EntitlementService
}

func NewUserTestController(sessionService service.SessionService, entitlementService service.EntitlementService) *UserTestController {
	return &UserTestController{
		sessionService:     sessionService,
		entitlementService: entitlementService,
	}
}

// GetPlacementQuestions godoc
// @Summary Start a placement session
// @Description Draws up to 3 N5, 4 N4 and 3 N3 questions from the test's core question sets and returns them with the live attempt. A short level is reported in the distribution, not as an error.
// @Tags Tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param lang query string false "Language code; omitted returns every translation"
// @Success 200 {object} dto.PlacementSessionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Test is not a placement test"
// @Failure 404 {object} dto.ErrorResponse "Test or entitlement not found"
// @Router /test/{id}/placement-questions [get]
func (c *UserTestController) GetPlacementQuestions(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var query dto.SessionQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.BindError(ctx, "GetPlacementQuestions", err)
		return
	}

	resp, err := c.sessionService.StartPlacementSession(ctx.Request.Context(), actor.UserID, testID, query.Language)
	if err != nil {
		controller.RespondError(ctx, "GetPlacementQuestions", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetLessonReviewQuestions godoc
// @Summary Start a lesson review session
// @Description Draws exactly 10 questions from the test's vocabulary, grammar and kanji sets. Fails when the pool cannot supply 10.
// @Tags Tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param lang query string false "Language code; omitted returns every translation"
// @Success 200 {object} dto.LessonReviewSessionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Wrong test kind, broken composition or insufficient content"
// @Failure 404 {object} dto.ErrorResponse "Test or entitlement not found"
// @Router /test/{id}/lesson-review-questions [get]
func (c *UserTestController) GetLessonReviewQuestions(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var query dto.SessionQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.BindError(ctx, "GetLessonReviewQuestions", err)
		return
	}

	resp, err := c.sessionService.StartLessonReviewSession(ctx.Request.Context(), actor.UserID, testID, query.Language)
	if err != nil {
		controller.RespondError(ctx, "GetLessonReviewQuestions", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetQuestionsByLevel godoc
// @Summary Draw questions of one level
// @Description Returns up to count random questions of the given level from the test's question sets. Correctness is not revealed and no attempt is created.
// @Tags Tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param level query int true "JLPT level (1-5)"
// @Param count query int true "Number of questions (1-100)"
// @Param lang query string false "Language code"
// @Success 200 {object} dto.LevelDrawResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /test/{id}/questions-by-level [get]
func (c *UserTestController) GetQuestionsByLevel(ctx *gin.Context) {
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var query dto.LevelDrawQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.BindError(ctx, "GetQuestionsByLevel", err)
		return
	}

	resp, err := c.sessionService.DrawByLevel(ctx.Request.Context(), testID, query)
	if err != nil {
		controller.RespondError(ctx, "GetQuestionsByLevel", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ConsumeQuota godoc
// @Summary Consume one use of a test
// @Description Decrements the caller's remaining uses of the test. Unlimited entitlements are left untouched.
// @Tags Tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} dto.QuotaResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Entitlement not found"
// @Router /test/{id}/quota/consume [post]
func (c *UserTestController) ConsumeQuota(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.entitlementService.ConsumeQuota(ctx.Request.Context(), actor.UserID, testID)
	if err != nil {
		controller.RespondError(ctx, "ConsumeQuota", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
