// Package admin serves the operational HTTP endpoints.
package admin

import (
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"talkbot/internal/session"
	"talkbot/internal/store"
	"talkbot/internal/transcript"
)

// Occupancy reports the voice slot pool usage.
type Occupancy interface {
	Size() int
	InUse() int
}

type Handler struct {
	users   store.Store
	states  session.Store
	slots   Occupancy
	started time.Time
}

func NewHandler(users store.Store, states session.Store, slots Occupancy) *Handler {
	return &Handler{users: users, states: states, slots: slots, started: time.Now()}
}

type StatusResponse struct {
	SlotsTotal int   `json:"slots_total"`
	SlotsInUse int   `json:"slots_in_use"`
	Users      int   `json:"users"`
	UptimeSecs int64 `json:"uptime_secs"`
}

type UserResponse struct {
	UserID    int64  `json:"user_id"`
	Language  string `json:"language"`
	State     string `json:"state"`
	Turns     int    `json:"turns"`
	CreatedAt int64  `json:"created_at,omitempty"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/v1/status", h.Status)
	e.GET("/v1/users/:id", h.GetUser)
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports slot occupancy and the number of known users.
// GET /v1/status
func (h *Handler) Status(c echo.Context) error {
	n, err := h.users.CountUsers(c.Request().Context())
	if err != nil {
		log.Error("Failed to count users", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to count users"})
	}
	return c.JSON(http.StatusOK, StatusResponse{
		SlotsTotal: h.slots.Size(),
		SlotsInUse: h.slots.InUse(),
		Users:      n,
		UptimeSecs: int64(time.Since(h.started).Seconds()),
	})
}

// GetUser shows the stored profile and dialogue state of one user.
// GET /v1/users/:id
func (h *Handler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	u, err := h.users.User(ctx, id)
	if err != nil {
		log.Error("Failed to load user", "user", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	state, err := h.states.Get(ctx, id)
	if err != nil {
		log.Error("Failed to load state", "user", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load state"})
	}

	return c.JSON(http.StatusOK, UserResponse{
		UserID:    u.ID,
		Language:  u.Language,
		State:     state.String(),
		Turns:     transcript.Count(u.Transcript, transcript.Delimiter),
		CreatedAt: unixMilli(u.CreatedAt),
		UpdatedAt: unixMilli(u.UpdatedAt),
	})
}

// unixMilli maps the zero time, as read from a NULL column, to 0.
func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// Server wraps the echo instance serving Handler.
type Server struct {
	e    *echo.Echo
	addr string
}

func NewServer(addr string, h *Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	h.Register(e)
	return &Server{e: e, addr: addr}
}

func (s *Server) Start() error {
	log.Info("Admin server listening", "addr", s.addr)
	if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
