package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"challenge75/internal/model"
	"challenge75/internal/service"
	"challenge75/pkg/auth"
	"challenge75/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.TelegramAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.TelegramAuth) {
	r := &userRoutes{us: us, a: a}
	h := handler.Group("/users")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("/", r.RegisterUser)
		h.GET("/:user_id", r.GetUser)
		h.DELETE("/:user_id", r.DeleteUser)
		h.GET("/:user_id/avatar", r.GetUserAvatar)
	}
}

type RegisterUserResponse struct {
	UserID       int64  `json:"user_id"`
	DisplayName  string `json:"display_name"`
	RestDaysLeft int    `json:"rest_days_left"`
}

// RegisterUser creates the account for the authenticated identity.
// Identity fields come from the validated token, never the body.
func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	userData, exists := c.Get(auth.ContextUserKey)
	if !exists {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"kind": "NOT_AUTHENTICATED", "message": "not authenticated"})
		return
	}

	identity, ok := userData.(*auth.TelegramUserData)
	if !ok {
		log.Error("invalid type assertion for telegram user data")
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "STORAGE_FAILURE", "message": "internal server error"})
		return
	}

	u := &model.User{
		TelegramID:       identity.ID,
		Username:         identity.Username,
		DisplayName:      identity.DisplayName(),
		RegistrationDate: identity.AuthDate,
		AuthDate:         identity.AuthDate,
	}

	err := r.us.Register(c.Request.Context(), u)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"kind": "VALIDATION", "message": "user already registered"})
			return
		}
		log.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "STORAGE_FAILURE", "message": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, RegisterUserResponse{
		UserID:       u.TelegramID,
		DisplayName:  u.DisplayName,
		RestDaysLeft: u.RestDaysLeft,
	})
}

func (r *userRoutes) GetUser(c *gin.Context) {
	userID, ok := authorizedUserID(c)
	if !ok {
		return
	}

	user, err := r.us.GetUserByTelegramID(c.Request.Context(), userID)
	if err != nil {
		renderServiceError(c, "failed to get user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":           user.TelegramID,
		"username":          user.Username,
		"display_name":      user.DisplayName,
		"rest_days_left":    user.RestDaysLeft,
		"registration_date": user.RegistrationDate,
	})
}

// DeleteUser removes the account; day records and completions cascade
// away with it.
func (r *userRoutes) DeleteUser(c *gin.Context) {
	userID, ok := authorizedUserID(c)
	if !ok {
		return
	}

	err := r.us.Delete(c.Request.Context(), userID)
	if err != nil {
		renderServiceError(c, "failed to delete user", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUserAvatar resolves the user's Telegram profile photo. Any
// authenticated user may fetch any avatar; the feed links other
// participants' avatars through this endpoint.
func (r *userRoutes) GetUserAvatar(c *gin.Context) {
	log := logger.Logger()

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		log.Info("failed to parse user_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"kind": "VALIDATION", "message": "invalid user_id"})
		return
	}

	if _, err := r.us.GetUserByTelegramID(c.Request.Context(), userID); err != nil {
		renderServiceError(c, "failed to get user", err)
		return
	}

	avatarFilePath, err := r.getUserAvatarURL(userID)
	if err != nil {
		log.Error("failed to get user avatar",
			zap.Error(err),
			zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "STORAGE_FAILURE", "message": "failed to fetch avatar"})
		return
	}

	if avatarFilePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"kind": "NOT_FOUND", "message": "no avatar found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avatar_file_path": avatarFilePath,
	})
}

func (r *userRoutes) getUserAvatarURL(userID int64) (string, error) {
	bot, err := tgbotapi.NewBotAPI(r.a.GetBotToken())
	if err != nil {
		return "", fmt.Errorf("failed to initialize bot: %w", err)
	}

	photos, err := bot.GetUserProfilePhotos(tgbotapi.UserProfilePhotosConfig{
		UserID: userID,
		Limit:  1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get user photos: %w", err)
	}

	if len(photos.Photos) == 0 {
		return "", nil
	}

	file, err := bot.GetFile(tgbotapi.FileConfig{
		FileID: photos.Photos[0][0].FileID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get file: %w", err)
	}

	return file.FilePath, nil
}
