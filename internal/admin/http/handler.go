package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/movstream/backend/internal/admin/service"
	commonhttp "github.com/movstream/backend/internal/common/http"
	"github.com/movstream/backend/internal/common/jwtverify"
	"github.com/movstream/backend/internal/common/logger"
	userdomain "github.com/movstream/backend/internal/user/domain"
)

const (
	usersPathPrefix = "/api/admin/users/"

	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Handler struct {
	svc      *service.UserAdminService
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(svc *service.UserAdminService, log *logger.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes mounts the admin user endpoints on mux. Callers are expected
// to wrap the returned handlers with the JWT and admin-role middleware.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/admin/users", h.handleUsers)
	mux.HandleFunc(usersPathPrefix, h.handleUserByID)
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listUsers(w, r)
	case http.MethodPost:
		h.createUser(w, r)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := commonhttp.PathSegment(r.URL.Path, usersPathPrefix)
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeUserIDRequired, "user id required", nil, "")
		return
	}
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidUserIDFormat, "invalid user id format", nil, "")
		return
	}

	switch {
	case r.Method == http.MethodGet:
		h.getUser(w, r, id)
	case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/status"):
		h.setActiveStatus(w, r, id)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)

	users, total, err := h.svc.ListUsers(r.Context(), filter)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}

	commonhttp.WriteJSON(w, http.StatusOK, listUsersResponse{
		Users: items,
		Pagination: pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
		},
	})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, id string) {
	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid request body", nil, "")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, validationMessage(err), nil, "")
		return
	}

	user, err := h.svc.CreateUser(r.Context(), service.CreateUserInput{
		FullName:    req.FullName,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Password:    req.Password,
		Role:        req.Role,
		AccountType: req.AccountType,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) setActiveStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req setStatusRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid request body", nil, "")
		return
	}
	if req.IsActive == nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "isActive is required", nil, "")
		return
	}

	actorID := actorIDFromContext(r)
	user, err := h.svc.SetActiveStatus(r.Context(), actorID, id, *req.IsActive)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func actorIDFromContext(r *http.Request) string {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}

func parseListFilter(r *http.Request) userdomain.ListFilter {
	q := r.URL.Query()

	filter := userdomain.ListFilter{
		Role:   q.Get("role"),
		Search: strings.TrimSpace(q.Get("search")),
		Page:   1,
		Limit:  defaultPageLimit,
	}

	if raw := q.Get("isActive"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &v
		}
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

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if ok := isValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid field: " + fe.Field()
	}
	return "validation failed"
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

type createUserRequest struct {
	FullName    string `json:"fullName" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin"`
	AccountType string `json:"accountType" validate:"omitempty,oneof=premium"`
}

type setStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

type userResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccountType string `json:"accountType,omitempty"`
	IsActive    bool   `json:"isActive"`
	IsVerified  bool   `json:"isVerified"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type listUsersResponse struct {
	Users      []userResponse `json:"users"`
	Pagination pagination     `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

func toUserResponse(u userdomain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		AccountType: u.AccountType,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
