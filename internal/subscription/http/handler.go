package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	commonhttp "github.com/movstream/backend/internal/common/http"
	"github.com/movstream/backend/internal/common/jwtverify"
	"github.com/movstream/backend/internal/common/logger"
	subdomain "github.com/movstream/backend/internal/subscription/domain"
	"github.com/movstream/backend/internal/subscription/service"
)

const subscriptionsPathPrefix = "/api/admin/subscriptions/"

type Handler struct {
	svc      *service.SubscriptionService
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(svc *service.SubscriptionService, log *logger.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterUserRoutes mounts the create endpoint for any authenticated user;
// the admin list and status endpoints are mounted separately so the caller
// can wrap them with the admin middleware.
func (h *Handler) RegisterUserRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/subscriptions", h.handleCreate)
}

func (h *Handler) RegisterAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/admin/subscriptions", h.handleList)
	mux.HandleFunc(subscriptionsPathPrefix, h.handleStatus)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "authentication required", nil, "")
		return
	}

	var req createSubscriptionRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid request body", nil, "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "validation failed", nil, "")
		return
	}

	sub, err := h.svc.Create(r.Context(), service.CreateInput{
		UserID: claims.UserID,
		Plan:   req.Plan,
		Price:  req.Price,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, toSubscriptionResponse(sub))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	subs, err := h.svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	items := make([]subscriptionResponse, 0, len(subs))
	for _, s := range subs {
		items = append(items, toSubscriptionResponse(s))
	}
	commonhttp.WriteJSON(w, http.StatusOK, listSubscriptionsResponse{Subscriptions: items})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := commonhttp.PathSegment(r.URL.Path, subscriptionsPathPrefix)
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "subscription id required", nil, "")
		return
	}
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid subscription id", nil, "")
		return
	}

	switch {
	case r.Method == http.MethodGet:
		sub, err := h.svc.Get(r.Context(), id)
		if err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toSubscriptionResponse(sub))
	case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/status"):
		h.updateStatus(w, r, id)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req updateStatusRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid request body", nil, "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "validation failed", nil, "")
		return
	}

	sub, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

type createSubscriptionRequest struct {
	Plan  string `json:"plan" validate:"required,oneof=monthly yearly"`
	Price int64  `json:"price" validate:"required,gt=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected cancelled"`
}

type subscriptionResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Plan      string `json:"plan"`
	Price     int64  `json:"price"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type listSubscriptionsResponse struct {
	Subscriptions []subscriptionResponse `json:"subscriptions"`
}

func toSubscriptionResponse(s subdomain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Plan:      s.Plan,
		Price:     s.Price,
		Status:    s.Status,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
