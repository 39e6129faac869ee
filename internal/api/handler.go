package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"draw_fetcher/internal/domain"
	"draw_fetcher/internal/logging"
)

const (
	defaultDrawsLimit = 20
	maxDrawsLimit     = 100
)

type Pipeline interface {
	Run(ctx context.Context) (*domain.CycleResult, error)
}

type DrawReader interface {
	Recent(ctx context.Context, limit int) ([]domain.Draw, error)
}

type StateReader interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
}

type Handler struct {
	pipeline Pipeline
	draws    DrawReader
	states   StateReader
	sourceID string
	logger   *slog.Logger
}

func NewHandler(pipeline Pipeline, draws DrawReader, states StateReader, sourceID string, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		draws:    draws,
		states:   states,
		sourceID: sourceID,
		logger:   logger.With("component", "api"),
	}
}

type LatestDrawResponse struct {
	Status   string       `json:"status"`
	Inserted *bool        `json:"inserted,omitempty"`
	Data     *domain.Draw `json:"data,omitempty"`
	Message  string       `json:"message,omitempty"`
}

type StoredDraw struct {
	domain.Draw
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Wingo API is running"})
}

// LatestDraw runs one pipeline cycle. Pipeline failures are reported in the
// body with status "error"; the HTTP status stays 200.
func (h *Handler) LatestDraw(c *gin.Context) {
	// A client hanging up must not abort a half-done persist.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.pipeline.Run(ctx)
	if err != nil {
		message := err.Error()
		if domain.Expected(err) {
			h.logger.Error("latest draw failed", "kind", domain.Kind(err), "error", err)
		} else {
			message = "API error: " + message
			logging.Critical(ctx, h.logger, "latest draw failed unexpectedly", "error", err)
		}
		c.JSON(http.StatusOK, LatestDrawResponse{Status: "error", Message: message})
		return
	}

	inserted := result.Inserted
	draw := result.Draw
	c.JSON(http.StatusOK, LatestDrawResponse{
		Status:   "success",
		Inserted: &inserted,
		Data:     &draw,
	})
}

func (h *Handler) ListDraws(c *gin.Context) {
	limit := defaultDrawsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxDrawsLimit)
	}

	draws, err := h.draws.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list draws", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to list draws"})
		return
	}

	out := make([]StoredDraw, 0, len(draws))
	for _, d := range draws {
		out = append(out, StoredDraw{Draw: d, CreatedAt: d.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": out})
}

func (h *Handler) Status(c *gin.Context) {
	state, err := h.states.Get(c.Request.Context(), h.sourceID)
	if err != nil {
		h.logger.Error("failed to load sync state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to load status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": state})
}
