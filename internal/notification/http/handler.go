package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	commonhttp "github.com/movstream/backend/internal/common/http"
	"github.com/movstream/backend/internal/common/jwtverify"
	"github.com/movstream/backend/internal/common/logger"
	"github.com/movstream/backend/internal/notification/domain"
	"github.com/movstream/backend/internal/notification/service"
)

type Handler struct {
	svc      *service.NotificationService
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(svc *service.NotificationService, log *logger.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/admin/notifications", h.handleHistory)
	mux.HandleFunc("/api/admin/notifications/maintenance", h.handleMaintenance)
	mux.HandleFunc("/api/admin/notifications/custom", h.handleCustom)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	logs, err := h.svc.History(r.Context(), limit)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	items := make([]logResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, toLogResponse(l))
	}
	commonhttp.WriteJSON(w, http.StatusOK, historyResponse{Notifications: items})
}

func (h *Handler) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	var req maintenanceRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid request body", nil, "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "validation failed", nil, "")
		return
	}

	entry, err := h.svc.SendMaintenance(r.Context(), actorID(r), req.Message)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toLogResponse(entry))
}

func (h *Handler) handleCustom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	var req customRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid request body", nil, "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "validation failed", nil, "")
		return
	}

	entry, err := h.svc.SendCustom(r.Context(), actorID(r), req.Subject, req.Message, req.Group)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toLogResponse(entry))
}

func actorID(r *http.Request) string {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}

type maintenanceRequest struct {
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type customRequest struct {
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
	Group   string `json:"group" validate:"required,oneof=all premium free"`
}

type logResponse struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	RecipientGroup string `json:"recipientGroup"`
	RecipientCount int    `json:"recipientCount"`
	Status         string `json:"status"`
	ErrorDetail    string `json:"errorDetail,omitempty"`
	SentBy         string `json:"sentBy"`
	CreatedAt      string `json:"createdAt"`
}

type historyResponse struct {
	Notifications []logResponse `json:"notifications"`
}

func toLogResponse(l domain.EmailNotificationLog) logResponse {
	return logResponse{
		ID:             l.ID,
		Type:           l.Type,
		Subject:        l.Subject,
		Message:        l.Message,
		RecipientGroup: l.RecipientGroup,
		RecipientCount: l.RecipientCount,
		Status:         l.Status,
		ErrorDetail:    l.ErrorDetail,
		SentBy:         l.SentBy,
		CreatedAt:      l.CreatedAt.UTC().Format(time.RFC3339),
	}
}
