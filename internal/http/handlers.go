package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecocampmy/campsite-chat-service/internal/chatbot"
	"github.com/ecocampmy/campsite-chat-service/internal/health"
	"github.com/ecocampmy/campsite-chat-service/internal/lifecycle"
	"github.com/ecocampmy/campsite-chat-service/internal/models"
	"github.com/ecocampmy/campsite-chat-service/internal/reply"
	"github.com/ecocampmy/campsite-chat-service/internal/validation"
)

// ChatRequest is the POST /api/chatbot body.
type ChatRequest struct {
	Message string               `json:"message"`
	History []models.ChatMessage `json:"history,omitempty"`
}

// ChatResponse is the single-field answer payload every branch returns.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// invalidMessage is the answer for unreadable or empty input. A deliberate
// split from the generic apology: the caller sent something we could not use,
// so 400 rather than 500.
const invalidMessage = "I didn't catch that. Please send me a short message about campsites, weather, or the site."

// HealthConfig holds thresholds and probes for the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
	// StorePing, when set, is called to check campsite store reachability.
	StorePing func() error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	bot              *chatbot.Service
	tracker          *health.Tracker
	healthConfig     *HealthConfig
	logger           *zap.Logger
	maxMessageLength int
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(bot *chatbot.Service, tracker *health.Tracker, healthConfig *HealthConfig, logger *zap.Logger, maxMessageLength int) *Handler {
	return &Handler{
		bot:              bot,
		tracker:          tracker,
		healthConfig:     healthConfig,
		logger:           logger,
		maxMessageLength: maxMessageLength,
	}
}

// PostChat handles POST /api/chatbot. Every outcome, including failure, is a
// {"answer": ...} payload; internal errors become the fixed apology with 500.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAnswer(w, http.StatusBadRequest, invalidMessage)
		return
	}
	message, err := validation.ValidateMessage(req.Message, h.maxMessageLength)
	if err != nil {
		writeAnswer(w, http.StatusBadRequest, invalidMessage)
		return
	}

	answer, err := h.bot.Answer(r.Context(), message, req.History)
	if err != nil {
		h.tracker.RecordError()
		if logger := loggerFromRequest(r); logger != nil {
			logger.Error("chat request failed", zap.Error(err))
		}
		writeAnswer(w, http.StatusInternalServerError, reply.Apology)
		return
	}
	h.tracker.RecordSuccess()
	writeAnswer(w, http.StatusOK, answer)
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := make(map[string]string)
	if h.healthConfig != nil && h.healthConfig.StorePing != nil {
		if h.healthConfig.StorePing() == nil {
			checks["store"] = "healthy"
		} else {
			checks["store"] = "unhealthy"
		}
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "campsite-chat-service",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// computeHealthStatus evaluates conditions in priority order:
// shutting-down > store unreachable > error-rate breach > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}
	}
	if h.healthConfig.StorePing != nil {
		if err := h.healthConfig.StorePing(); err != nil {
			return healthResult{"degraded", http.StatusServiceUnavailable, "store_unreachable"}
		}
	}
	if h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 && h.tracker != nil {
		errors, total := h.tracker.ErrorRate(h.healthConfig.DegradedWindow)
		if total > 0 {
			pct := float64(errors) * 100 / float64(total)
			if pct >= float64(h.healthConfig.DegradedErrorPct) {
				return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
			}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeAnswer writes the single-answer-field payload with the given status.
func writeAnswer(w http.ResponseWriter, status int, answer string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ChatResponse{Answer: answer})
}

// loggerFromRequest extracts the request-scoped logger set by the
// correlation middleware, or nil.
func loggerFromRequest(r *http.Request) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok {
		return logger
	}
	return nil
}
