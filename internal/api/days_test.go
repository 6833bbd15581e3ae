package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"challenge75/internal/challenge"
	"challenge75/internal/model"
	"challenge75/internal/service"
	"challenge75/pkg/auth"
)

type mockProgressService struct {
	mock.Mock
}

func (m *mockProgressService) GetDay(ctx context.Context, userID int64, date time.Time) (*model.Day, int, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*model.Day), args.Int(1), args.Error(2)
}

func (m *mockProgressService) SubmitDay(ctx context.Context, userID int64, date time.Time, isRestDay bool, workouts map[challenge.TaskKind]service.WorkoutInput, tasks map[challenge.TaskKind]bool) (*model.Day, int, error) {
	args := m.Called(ctx, userID, date, isRestDay, workouts, tasks)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*model.Day), args.Int(1), args.Error(2)
}

func (m *mockProgressService) ToggleTask(ctx context.Context, userID int64, date time.Time, kind challenge.TaskKind) (*model.Day, int, error) {
	args := m.Called(ctx, userID, date, kind)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*model.Day), args.Int(1), args.Error(2)
}

func testRouter(ps service.ProgressServiceI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	a := auth.NewTelegramAuth("test-token", true)
	group := router.Group("/api/v1")
	NewDayRoutes(group, ps, a, challenge.NewWindow(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), challenge.DurationDays))
	return router
}

func authHeader(id string) string {
	v := url.Values{}
	v.Set("auth_date", "1677649900")
	v.Set("user", `{"id":`+id+`,"first_name":"Anna","username":"anna"}`)
	return "Telegram " + v.Encode()
}

func TestGetDay_IdentityMismatchForbidden(t *testing.T) {
	ps := &mockProgressService{}
	router := testRouter(ps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/days/99?date=2025-02-10", nil)
	req.Header.Set("Authorization", authHeader("42"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
	ps.AssertNotCalled(t, "GetDay")
}

func TestGetDay_MissingAuth(t *testing.T) {
	ps := &mockProgressService{}
	router := testRouter(ps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/days/42?date=2025-02-10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_AUTHENTICATED")
}

func TestSubmitDay_QuotaExhaustedConflict(t *testing.T) {
	ps := &mockProgressService{}
	ps.On("SubmitDay", mock.Anything, int64(42), mock.Anything, true, mock.Anything, mock.Anything).
		Return(nil, 0, service.ErrQuotaExhausted)
	router := testRouter(ps)

	body := `{"date":"2025-02-10","is_rest_day":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/42", strings.NewReader(body))
	req.Header.Set("Authorization", authHeader("42"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "QUOTA_EXHAUSTED")
	ps.AssertExpectations(t)
}

func TestSubmitDay_OutOfWindowRendered(t *testing.T) {
	ps := &mockProgressService{}
	ps.On("SubmitDay", mock.Anything, int64(42), mock.Anything, false, mock.Anything, mock.Anything).
		Return(nil, 0, service.ErrOutOfWindow)
	router := testRouter(ps)

	body := `{"date":"2026-01-01","is_rest_day":false}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/42", strings.NewReader(body))
	req.Header.Set("Authorization", authHeader("42"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "OUT_OF_WINDOW")
}

func TestSubmitDay_Success(t *testing.T) {
	date := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	day := &model.Day{
		UserID:     42,
		Date:       date,
		IsComplete: true,
		Completions: []model.TaskCompletion{
			{Kind: challenge.TaskWorkout1, Completed: true},
		},
	}

	ps := &mockProgressService{}
	ps.On("SubmitDay", mock.Anything, int64(42), date, false,
		mock.MatchedBy(func(workouts map[challenge.TaskKind]service.WorkoutInput) bool {
			w, ok := workouts[challenge.TaskWorkout1]
			return ok && w.Completed && w.Notes != nil && *w.Notes == "5k run"
		}),
		mock.MatchedBy(func(tasks map[challenge.TaskKind]bool) bool {
			return tasks[challenge.TaskReading]
		})).
		Return(day, 7, nil)
	router := testRouter(ps)

	body := `{"date":"2025-02-10","is_rest_day":false,` +
		`"workouts":{"WORKOUT_1":{"completed":true,"notes":"5k run"}},` +
		`"tasks":{"READING":true}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/42", strings.NewReader(body))
	req.Header.Set("Authorization", authHeader("42"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rest_days_left":7`)
	assert.Contains(t, w.Body.String(), `"day_number":8`)
	ps.AssertExpectations(t)
}
