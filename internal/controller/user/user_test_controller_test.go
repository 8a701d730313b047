package user

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/lshigami/jlpt-assessment/internal/localization"
	"github.com/lshigami/jlpt-assessment/internal/middleware"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"github.com/lshigami/jlpt-assessment/internal/repository"
	"github.com/lshigami/jlpt-assessment/internal/service"
	"github.com/lshigami/jlpt-assessment/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "user-test-secret"

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)

	entRepo := repository.NewEntitlementRepository(db)
	resolver := localization.NewDBResolver(repository.NewTranslationRepository(db))
	sessions := service.NewSessionService(
		repository.NewTestRepository(db),
		entRepo,
		repository.NewAttemptRepository(db),
		repository.NewContentPool(db),
		localization.NewLocalizer(resolver, resolver),
		service.SeededRandFactory(3),
	)
	ctrl := NewUserTestController(sessions, service.NewEntitlementService(entRepo))

	r := gin.New()
	g := r.Group("/api/v1/test/:id", middleware.Authenticate(secret))
	g.GET("/placement-questions", ctrl.GetPlacementQuestions)
	g.GET("/lesson-review-questions", ctrl.GetLessonReviewQuestions)
	g.GET("/questions-by-level", ctrl.GetQuestionsByLevel)
	g.POST("/quota/consume", ctrl.ConsumeQuota)
	return r, db
}

func get(t *testing.T, r *gin.Engine, method, path string, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	token, err := middleware.SignToken(secret, userID, "user")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedPlacement(t *testing.T, db *gorm.DB) *model.Test {
	t.Helper()
	test := testutil.SeedTest(t, db, model.TestKindPlacement, 1)
	set := testutil.SeedQuestionSet(t, db, model.ContentKindGrammar, nil)
	for _, level := range []int{5, 4, 3} {
		testutil.SeedQuestions(t, db, set, model.ContentKindGrammar, level, 5)
	}
	testutil.LinkQuestionSets(t, db, test.ID, set)
	return test
}

func TestGetPlacementQuestions(t *testing.T) {
	r, db := newRouter(t)
	test := seedPlacement(t, db)
	testutil.SeedEntitlement(t, db, 20, test.ID, nil)
	path := fmt.Sprintf("/api/v1/test/%d/placement-questions?lang=en", test.ID)

	w := get(t, r, http.MethodGet, path, 20)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AttemptID    uint                         `json:"attemptId"`
		Questions    []map[string]any             `json:"questions"`
		Distribution dto.PlacementDistributionDTO `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotZero(t, body.AttemptID)
	assert.Len(t, body.Questions, 10)
	assert.Equal(t, 10, body.Distribution.Total)
	assert.IsType(t, "", body.Questions[0]["text"])

	w = get(t, r, http.MethodGet, path, 21)
	assert.Equal(t, http.StatusNotFound, w.Code, "caller without entitlement")

	w = get(t, r, http.MethodGet, fmt.Sprintf("/api/v1/test/%d/lesson-review-questions", test.ID), 20)
	assert.Equal(t, http.StatusBadRequest, w.Code, "wrong test kind")
}

func TestGetQuestionsByLevel(t *testing.T) {
	r, db := newRouter(t)
	test := seedPlacement(t, db)

	w := get(t, r, http.MethodGet, fmt.Sprintf("/api/v1/test/%d/questions-by-level?level=4&count=3", test.ID), 20)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Count     int `json:"count"`
		Questions []struct {
			Answers []map[string]any `json:"answers"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	for _, q := range resp.Questions {
		for _, a := range q.Answers {
			v, present := a["is_correct"]
			assert.True(t, present)
			assert.Nil(t, v)
		}
	}

	w = get(t, r, http.MethodGet, fmt.Sprintf("/api/v1/test/%d/questions-by-level?level=9&count=3", test.ID), 20)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConsumeQuota(t *testing.T) {
	r, db := newRouter(t)
	test := seedPlacement(t, db)
	testutil.SeedEntitlement(t, db, 20, test.ID, testutil.Ptr(3))

	w := get(t, r, http.MethodPost, fmt.Sprintf("/api/v1/test/%d/quota/consume", test.ID), 20)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.QuotaResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Consumed)
	assert.Equal(t, 2, *resp.Remaining)
}

func TestUnauthenticated(t *testing.T) {
	r, _ := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/test/1/placement-questions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
