package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	commonhttp "github.com/movstream/backend/internal/common/http"
	"github.com/movstream/backend/internal/common/jwtverify"
	"github.com/movstream/backend/internal/common/logger"
	fbdomain "github.com/movstream/backend/internal/feedback/domain"
	"github.com/movstream/backend/internal/feedback/service"
)

const (
	feedbackPathPrefix = "/api/admin/feedback/"

	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Handler struct {
	svc      *service.FeedbackService
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(svc *service.FeedbackService, log *logger.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterPublicRoutes mounts the anonymous submission endpoint. Callers
// should wrap it with the per-IP rate limiter.
func (h *Handler) RegisterPublicRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/feedback", h.handleSubmit)
}

func (h *Handler) RegisterAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/admin/feedback", h.handleList)
	mux.HandleFunc("/api/admin/feedback/unread-count", h.handleUnreadCount)
	mux.HandleFunc(feedbackPathPrefix, h.handleByID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	var req submitFeedbackRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid request body", nil, "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "validation failed", nil, "")
		return
	}

	// Submissions are anonymous unless the caller carried a valid token.
	var userID string
	if claims, ok := jwtverify.FromContext(r.Context()); ok {
		userID = claims.UserID
	}

	fb, err := h.svc.Submit(r.Context(), service.SubmitInput{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Type:    req.Type,
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, toFeedbackResponse(fb))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	items, total, err := h.svc.List(r.Context(), parseListFilter(r))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := listFeedbackResponse{Feedback: make([]feedbackResponse, 0, len(items)), Total: total}
	for _, fb := range items {
		resp.Feedback = append(resp.Feedback, toFeedbackResponse(fb))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	count, err := h.svc.UnreadCount(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]int{"unreadCount": count})
}

func (h *Handler) handleByID(w http.ResponseWriter, r *http.Request) {
	id, ok := commonhttp.PathSegment(r.URL.Path, feedbackPathPrefix)
	if !ok || id == "unread-count" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "feedback id required", nil, "")
		return
	}
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid feedback id", nil, "")
		return
	}

	switch {
	case r.Method == http.MethodGet:
		fb, err := h.svc.Get(r.Context(), id)
		if err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toFeedbackResponse(fb))
	case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/read"):
		fb, err := h.svc.MarkRead(r.Context(), id)
		if err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toFeedbackResponse(fb))
	case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/respond"):
		h.respond(w, r, id)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, id string) {
	var req respondRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid request body", nil, "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "validation failed", nil, "")
		return
	}

	fb, err := h.svc.Respond(r.Context(), id, req.Status, req.ResponseMessage)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toFeedbackResponse(fb))
}

func parseListFilter(r *http.Request) fbdomain.ListFilter {
	q := r.URL.Query()

	filter := fbdomain.ListFilter{
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Page:   1,
		Limit:  defaultPageLimit,
	}

	if unread, err := strconv.ParseBool(q.Get("unread")); err == nil {
		filter.Unread = unread
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
		filter.Limit = limit
	}
	return filter
}

type submitFeedbackRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Type    string `json:"type" validate:"required,oneof=bug feature content other"`
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type respondRequest struct {
	Status          string `json:"status" validate:"required,oneof=pending reviewed resolved"`
	ResponseMessage string `json:"responseMessage" validate:"max=5000"`
}

type feedbackResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"userId,omitempty"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Type            string `json:"type"`
	Subject         string `json:"subject"`
	Message         string `json:"message"`
	Status          string `json:"status"`
	IsRead          bool   `json:"isRead"`
	ResponseMessage string `json:"responseMessage,omitempty"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

type listFeedbackResponse struct {
	Feedback []feedbackResponse `json:"feedback"`
	Total    int                `json:"total"`
}

func toFeedbackResponse(fb fbdomain.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:              fb.ID,
		UserID:          fb.UserID,
		Name:            fb.Name,
		Email:           fb.Email,
		Type:            fb.Type,
		Subject:         fb.Subject,
		Message:         fb.Message,
		Status:          fb.Status,
		IsRead:          fb.IsRead,
		ResponseMessage: fb.ResponseMessage,
		CreatedAt:       fb.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       fb.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
