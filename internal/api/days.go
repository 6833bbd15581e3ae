package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"challenge75/internal/challenge"
	"challenge75/internal/model"
	"challenge75/internal/service"
	"challenge75/pkg/auth"
	"challenge75/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type dayRoutes struct {
	ps     service.ProgressServiceI
	a      *auth.TelegramAuth
	window challenge.Window
}

func NewDayRoutes(handler *gin.RouterGroup, ps service.ProgressServiceI, a *auth.TelegramAuth, window challenge.Window) {
	r := &dayRoutes{ps: ps, a: a, window: window}
	h := handler.Group("/days")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/:user_id", r.GetDay)
		h.POST("/:user_id", r.SubmitDay)
		h.POST("/:user_id/tasks/:kind/toggle", r.ToggleTask)
	}
}

type WorkoutPayload struct {
	Completed bool    `json:"completed"`
	Notes     *string `json:"notes,omitempty"`
}

type SubmitDayRequest struct {
	Date      string                    `json:"date" binding:"required"`
	IsRestDay bool                      `json:"is_rest_day"`
	Workouts  map[string]WorkoutPayload `json:"workouts"`
	Tasks     map[string]bool           `json:"tasks"`
}

type TaskCompletionResponse struct {
	Kind      string  `json:"kind"`
	Completed bool    `json:"completed"`
	Notes     *string `json:"notes,omitempty"`
}

type DayResponse struct {
	Date        string                   `json:"date"`
	DayNumber   *int                     `json:"day_number,omitempty"`
	IsRestDay   bool                     `json:"is_rest_day"`
	IsComplete  bool                     `json:"is_complete"`
	Completions []TaskCompletionResponse `json:"completions"`
}

type DayStateResponse struct {
	Day          DayResponse `json:"day"`
	RestDaysLeft int         `json:"rest_days_left"`
}

func (r *dayRoutes) dayResponse(day *model.Day) DayResponse {
	out := DayResponse{
		Date:        day.Date.Format(dateLayout),
		IsRestDay:   day.IsRestDay,
		IsComplete:  day.IsComplete,
		Completions: make([]TaskCompletionResponse, 0, len(day.Completions)),
	}
	if n, ok := r.window.DayNumber(day.Date); ok {
		out.DayNumber = &n
	}
	for _, c := range day.Completions {
		out.Completions = append(out.Completions, TaskCompletionResponse{
			Kind:      string(c.Kind),
			Completed: c.Completed,
			Notes:     c.Notes,
		})
	}
	return out
}

func (r *dayRoutes) GetDay(c *gin.Context) {
	log := logger.Logger()

	userID, ok := authorizedUserID(c)
	if !ok {
		return
	}

	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		log.Info("invalid date parameter", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"kind": "VALIDATION", "message": "date must be YYYY-MM-DD"})
		return
	}

	day, restLeft, err := r.ps.GetDay(c.Request.Context(), userID, date)
	if err != nil {
		renderServiceError(c, "failed to get day", err)
		return
	}

	c.JSON(http.StatusOK, DayStateResponse{
		Day:          r.dayResponse(day),
		RestDaysLeft: restLeft,
	})
}

func (r *dayRoutes) SubmitDay(c *gin.Context) {
	log := logger.Logger()

	userID, ok := authorizedUserID(c)
	if !ok {
		return
	}

	var req SubmitDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"kind": "VALIDATION", "message": "invalid request body"})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		log.Info("invalid date in request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"kind": "VALIDATION", "message": "date must be YYYY-MM-DD"})
		return
	}

	workouts := make(map[challenge.TaskKind]service.WorkoutInput, len(req.Workouts))
	for kind, w := range req.Workouts {
		workouts[challenge.TaskKind(kind)] = service.WorkoutInput{
			Completed: w.Completed,
			Notes:     w.Notes,
		}
	}
	tasks := make(map[challenge.TaskKind]bool, len(req.Tasks))
	for kind, completed := range req.Tasks {
		tasks[challenge.TaskKind(kind)] = completed
	}

	day, restLeft, err := r.ps.SubmitDay(c.Request.Context(), userID, date, req.IsRestDay, workouts, tasks)
	if err != nil {
		renderServiceError(c, "failed to submit day", err)
		return
	}

	c.JSON(http.StatusOK, DayStateResponse{
		Day:          r.dayResponse(day),
		RestDaysLeft: restLeft,
	})
}

func (r *dayRoutes) ToggleTask(c *gin.Context) {
	log := logger.Logger()

	userID, ok := authorizedUserID(c)
	if !ok {
		return
	}

	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		log.Info("invalid date parameter", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"kind": "VALIDATION", "message": "date must be YYYY-MM-DD"})
		return
	}

	kind := challenge.TaskKind(c.Param("kind"))

	day, restLeft, err := r.ps.ToggleTask(c.Request.Context(), userID, date, kind)
	if err != nil {
		renderServiceError(c, "failed to toggle task", err)
		return
	}

	c.JSON(http.StatusOK, DayStateResponse{
		Day:          r.dayResponse(day),
		RestDaysLeft: restLeft,
	})
}

// authorizedUserID parses :user_id and verifies it matches the
// authenticated identity. A mismatch is a FORBIDDEN, not a 404: the
// caller named a real route but someone else's data.
func authorizedUserID(c *gin.Context) (int64, bool) {
	log := logger.Logger()

	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		log.Info("failed to parse user_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"kind": "VALIDATION", "message": "invalid user_id"})
		return 0, false
	}

	userData, exists := c.Get(auth.ContextUserKey)
	if !exists {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"kind": "NOT_AUTHENTICATED", "message": "not authenticated"})
		return 0, false
	}

	identity, ok := userData.(*auth.TelegramUserData)
	if !ok {
		log.Error("invalid type assertion for telegram user data")
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "STORAGE_FAILURE", "message": "internal server error"})
		return 0, false
	}

	if identity.ID != id {
		log.Info("identity mismatch",
			zap.Int64("authenticated_id", identity.ID),
			zap.Int64("requested_id", id))
		c.JSON(http.StatusForbidden, gin.H{"kind": "FORBIDDEN", "message": "cannot act on another user's data"})
		return 0, false
	}

	return id, true
}

func renderServiceError(c *gin.Context, msg string, err error) {
	log := logger.Logger()

	switch {
	case errors.Is(err, service.ErrOutOfWindow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"kind": "OUT_OF_WINDOW", "message": "date is outside the 75-day challenge window"})
	case errors.Is(err, service.ErrQuotaExhausted):
		c.JSON(http.StatusConflict, gin.H{"kind": "QUOTA_EXHAUSTED", "message": "no rest days left"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"kind": "NOT_FOUND", "message": "user not found"})
	case errors.Is(err, service.ErrUnknownTask):
		c.JSON(http.StatusBadRequest, gin.H{"kind": "VALIDATION", "message": "unknown task kind"})
	default:
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "STORAGE_FAILURE", "message": "internal server error"})
	}
}
