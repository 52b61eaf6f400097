package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/enrich"
	"github.com/onegateway/site-notify/internal/pkg/httputil"
	"github.com/onegateway/site-notify/internal/pkg/logger"
	"github.com/onegateway/site-notify/internal/service/contact"
)

const (
	successMessage = "Telegram notification sent successfully"
	failureMessage = "Failed to send Telegram notification"
)

// Submitter runs a submission through the pipeline.
type Submitter interface {
	Submit(ctx context.Context, req domain.SubmissionRequest, meta enrich.ServerContext) (*contact.Result, error)
}

// SubmitResponse is the success body. EnhancedData echoes the whole
// enriched record: the submitted fields plus the derived client context.
type SubmitResponse struct {
	Success           bool                  `json:"success"`
	Message           string                `json:"message"`
	MessageID         int64                 `json:"message_id"`
	TelegramMessageID int64                 `json:"telegram_message_id"`
	EnhancedData      domain.EnrichedRecord `json:"enhanced_data"`
}

type Handler struct {
	svc Submitter
	log *logger.Logger
}

func NewHandler(svc Submitter, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Routes returns the service router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.HandleFunc("/health", h.HandleHealth)
	r.HandleFunc("/*", h.HandleContact)
	return r
}

// HandleHealth answers GET /health; other methods fall through to the
// contact gate like any other path.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.HandleContact(w, r)
		return
	}
	httputil.OK(w, map[string]string{"status": "ok"})
}

// HandleContact is the method gate in front of the pipeline.
func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		httputil.Empty(w, http.StatusOK)
		return
	case http.MethodPost:
	default:
		httputil.MethodNotAllowed(w)
		return
	}

	log := h.log.With("request_id", middleware.GetReqID(r.Context()))

	var req domain.SubmissionRequest
	if err := httputil.Decode(r, &req); err != nil {
		log.Warn("rejecting malformed submission", "error", err.Error())
		httputil.ErrorWithDetails(w, http.StatusInternalServerError, failureMessage,
			fmt.Errorf("%w: %w", contact.ErrMalformedRequest, err).Error())
		return
	}

	res, err := h.svc.Submit(r.Context(), req, enrich.ServerContext{
		ClientIP:  ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, contact.ErrMalformedRequest) {
			log.Warn("rejecting invalid submission", "error", err.Error())
		}
		httputil.ErrorWithDetails(w, http.StatusInternalServerError, failureMessage, err.Error())
		return
	}

	httputil.OK(w, SubmitResponse{
		Success:           true,
		Message:           successMessage,
		MessageID:         res.Receipt.MessageID,
		TelegramMessageID: res.Receipt.MessageID,
		EnhancedData:      res.Record,
	})
}
