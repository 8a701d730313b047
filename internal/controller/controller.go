package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/lshigami/jlpt-assessment/internal/middleware"
	"github.com/lshigami/jlpt-assessment/internal/service"
	"github.com/rs/zerolog/log"
)

// ParseID reads a positive numeric path parameter. It writes the 400
// response itself and reports false when the parameter is invalid.
func ParseID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: fmt.Sprintf("Invalid %s format", name), Details: []string{raw}})
		return 0, false
	}
	return uint(id), true
}

// CurrentActor returns the authenticated caller or writes a 401.
func CurrentActor(ctx *gin.Context) (service.Actor, bool) {
	id, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthorized"})
		return service.Actor{}, false
	}
	return service.Actor{UserID: id.UserID, IsAdmin: id.IsAdmin()}, true
}

// BindError answers a request whose body or query failed to bind.
func BindError(ctx *gin.Context, op string, err error) {
	log.Warn().Err(err).Str("op", op).Msg("Failed to bind request")
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Details: []string{err.Error()}})
}

// RespondError maps a service error to its status and body. Composition
// violations carry their rule and offending question sets.
func RespondError(ctx *gin.Context, op string, err error) {
	status := apperror.Status(err)
	resp := dto.ErrorResponse{Message: err.Error()}

	var violation *apperror.CompositionViolation
	if errors.As(err, &violation) {
		resp.Message = violation.Message
		resp.Rule = violation.Rule
		resp.QuestionSetIDs = violation.QuestionSetIDs
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("op", op).Msg("Service error")
		resp = dto.ErrorResponse{Message: "Internal server error"}
	} else {
		log.Warn().Err(err).Str("op", op).Int("status", status).Msg("Request rejected")
	}
	ctx.JSON(status, resp)
}
