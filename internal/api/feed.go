package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"challenge75/internal/middleware"
	"challenge75/internal/model"
	"challenge75/internal/service"
	"challenge75/pkg/auth"
	"challenge75/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type feedRoutes struct {
	fs  service.FeedServiceI
	us  service.UserServiceI
	a   *auth.TelegramAuth
	hub *FeedHub
}

func NewFeedRoutes(handler *gin.RouterGroup, fs service.FeedServiceI, us service.UserServiceI, a *auth.TelegramAuth, authz *middleware.Authorization, hub *FeedHub) {
	r := &feedRoutes{fs: fs, us: us, a: a, hub: hub}
	h := handler.Group("/feed")
	h.Use(a.TelegramAuthMiddleware(), authz.RegisteredOnly())
	{
		h.GET("/today", r.SnapshotToday)
		h.GET("/ws", r.Stream)
	}
}

type FeedEntryResponse struct {
	UserID      int64        `json:"user_id"`
	DisplayName string       `json:"display_name"`
	Avatar      string       `json:"avatar"`
	Day         *DayResponse `json:"day"`
}

func feedEntryResponse(entry model.FeedEntry) FeedEntryResponse {
	out := FeedEntryResponse{
		UserID:      entry.UserID,
		DisplayName: entry.DisplayName,
		Avatar:      avatarPath(entry.UserID),
	}
	if entry.Day != nil {
		day := DayResponse{
			Date:        entry.Day.Date.Format(dateLayout),
			IsRestDay:   entry.Day.IsRestDay,
			IsComplete:  entry.Day.IsComplete,
			Completions: make([]TaskCompletionResponse, 0, len(entry.Day.Completions)),
		}
		for _, c := range entry.Day.Completions {
			day.Completions = append(day.Completions, TaskCompletionResponse{
				Kind:      string(c.Kind),
				Completed: c.Completed,
				Notes:     c.Notes,
			})
		}
		out.Day = &day
	}
	return out
}

func avatarPath(userID int64) string {
	return fmt.Sprintf("/api/v1/users/%d/avatar", userID)
}

func (r *feedRoutes) SnapshotToday(c *gin.Context) {
	log := logger.Logger()

	entries, err := r.fs.SnapshotToday(c.Request.Context())
	if err != nil {
		log.Error("failed to build feed snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "STORAGE_FAILURE", "message": "internal server error"})
		return
	}

	out := make([]FeedEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, feedEntryResponse(entry))
	}

	c.JSON(http.StatusOK, out)
}

func (r *feedRoutes) Stream(c *gin.Context) {
	log := logger.Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("failed to upgrade websocket", zap.Error(err))
		return
	}

	r.hub.Add(conn)
}

// FeedHub fans live day updates out to websocket feed subscribers.
// It implements service.FeedNotifier; broadcasts never block the
// mutating request.
type FeedHub struct {
	us service.UserServiceI

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	// writeMu serializes broadcasts; gorilla connections do not
	// support concurrent writers.
	writeMu sync.Mutex
}

func NewFeedHub(us service.UserServiceI) *FeedHub {
	return &FeedHub{
		us:    us,
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (h *FeedHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Drain reads so ping/close frames are processed; drop the
	// connection on any read error.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

func (h *FeedHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

type feedUpdateMessage struct {
	Type  string            `json:"type"`
	Entry FeedEntryResponse `json:"entry"`
}

func (h *FeedHub) DayUpdated(userID int64, day *model.Day) {
	go h.broadcast(userID, day)
}

func (h *FeedHub) broadcast(userID int64, day *model.Day) {
	log := logger.Logger()

	entry := model.FeedEntry{UserID: userID, Day: day}
	if user, err := h.us.GetUserByTelegramID(context.Background(), userID); err == nil {
		entry.DisplayName = user.DisplayName
	}

	payload, err := json.Marshal(feedUpdateMessage{
		Type:  "day_updated",
		Entry: feedEntryResponse(entry),
	})
	if err != nil {
		log.Error("failed to marshal feed update", zap.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(conn)
		}
	}
}
