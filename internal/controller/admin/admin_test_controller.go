package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/jlpt-assessment/internal/controller"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/lshigami/jlpt-assessment/internal/service"
)

type AdminTestController struct {
	adminTestService service.AdminTestService
}

func NewAdminTestController(adminTestService service.AdminTestService) *AdminTestController {
	return &AdminTestController{adminTestService: adminTestService}
}

// CreateTest godoc
// @Summary (Admin) Create a test
// @Description Creates a test with its translations and, optionally, its first question sets. Any composition violation rejects the whole request.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param test_data body dto.TestCreateDTO true "Test creation data"
// @Success 201 {object} dto.TestResponseDTO "Test created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input or composition violation"
// @Failure 404 {object} dto.ErrorResponse "Question set not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "CreateTest", err)
		return
	}

	testResp, err := c.adminTestService.CreateTest(ctx.Request.Context(), actor, req)
	if err != nil {
		controller.RespondError(ctx, "CreateTest", err)
		return
	}
	ctx.JSON(http.StatusCreated, testResp)
}

// GetTest godoc
// @Summary (Admin) Get a test
// @Tags Admin - Tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid test ID"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id} [get]
func (c *AdminTestController) GetTest(ctx *gin.Context) {
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	testResp, err := c.adminTestService.GetTest(ctx.Request.Context(), testID)
	if err != nil {
		controller.RespondError(ctx, "GetTest", err)
		return
	}
	ctx.JSON(http.StatusOK, testResp)
}

// UpdateTest godoc
// @Summary (Admin) Update a test
// @Description Changing the kind is rejected when the linked question sets break the new kind's composition rules. A changed limit is copied onto every entitlement of the test.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param test_data body dto.TestUpdateDTO true "Fields to change"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or composition violation"
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the test"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id} [put]
func (c *AdminTestController) UpdateTest(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.TestUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "UpdateTest", err)
		return
	}

	testResp, err := c.adminTestService.UpdateTest(ctx.Request.Context(), actor, testID, req)
	if err != nil {
		controller.RespondError(ctx, "UpdateTest", err)
		return
	}
	ctx.JSON(http.StatusOK, testResp)
}

// UpdateStatus godoc
// @Summary (Admin) Change a test's status
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param status body dto.TestStatusDTO true "New status"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the test"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id}/status [patch]
func (c *AdminTestController) UpdateStatus(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.TestStatusDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "UpdateStatus", err)
		return
	}

	testResp, err := c.adminTestService.UpdateStatus(ctx.Request.Context(), actor, testID, req.Status)
	if err != nil {
		controller.RespondError(ctx, "UpdateStatus", err)
		return
	}
	ctx.JSON(http.StatusOK, testResp)
}

// DeleteTest godoc
// @Summary (Admin) Delete a test
// @Tags Admin - Tests
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 204 "Deleted"
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the test"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id} [delete]
func (c *AdminTestController) DeleteTest(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.adminTestService.DeleteTest(ctx.Request.Context(), actor, testID); err != nil {
		controller.RespondError(ctx, "DeleteTest", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AttachTestSets godoc
// @Summary (Admin) Attach question sets to a test
// @Description Validates the whole batch against the test kind's composition rules and the sets already linked. Nothing is linked unless every set passes.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param sets body dto.AttachTestSetsDTO true "Question set IDs"
// @Success 200 {object} dto.AttachTestSetsResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Composition violation"
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the test"
// @Failure 404 {object} dto.ErrorResponse "Test or question set not found"
// @Router /admin/tests/{id}/testsets [post]
func (c *AdminTestController) AttachTestSets(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AttachTestSetsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "AttachTestSets", err)
		return
	}

	resp, err := c.adminTestService.AttachQuestionSets(ctx.Request.Context(), actor, testID, req.TestSetIDs)
	if err != nil {
		controller.RespondError(ctx, "AttachTestSets", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DetachTestSet godoc
// @Summary (Admin) Detach a question set from a test
// @Tags Admin - Tests
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param setId path int true "Question set ID"
// @Success 204 "Detached"
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the test"
// @Failure 404 {object} dto.ErrorResponse "Test or link not found"
// @Router /admin/tests/{id}/testsets/{setId} [delete]
func (c *AdminTestController) DetachTestSet(ctx *gin.Context) {
	actor, ok := controller.CurrentActor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	setID, ok := controller.ParseID(ctx, "setId")
	if !ok {
		return
	}
	if err := c.adminTestService.DetachQuestionSet(ctx.Request.Context(), actor, testID, setID); err != nil {
		controller.RespondError(ctx, "DetachTestSet", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
