package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/auth"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/service"
)

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName        string  `json:"firstName" validate:"required,min=2,max=120,personname"`
		LastName         string  `json:"lastName" validate:"omitempty,min=2,max=120,personname"`
		Email            string  `json:"email" validate:"required,email,max=190"`
		Password         string  `json:"password" validate:"required,min=8,hasletter"`
		PhoneNumber      *string `json:"phoneNumber" validate:"omitempty,numeric,min=10,max=15"`
		PhoneCountryCode *string `json:"phoneCountryCode" validate:"omitempty,countrycode"`
		UserType         string  `json:"userType" validate:"required,oneof=candidate employer admin"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), service.CreateUserInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PhoneNumber:      req.PhoneNumber,
		PhoneCountryCode: req.PhoneCountryCode,
		UserType:         domain.Role(req.UserType),
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.writeJSON(w, r, http.StatusOK, user)
}

// GetUserByEmail 管理员可以查询任何人，普通用户只能查询自己
func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := service.NormalizeEmail(chi.URLParam(r, "email"))

	id, _ := auth.IdentityFrom(r.Context())
	if !id.IsAdmin() && service.NormalizeEmail(id.Subject) != email {
		h.errorResponse(w, r, http.StatusForbidden, "Access denied")
		return
	}

	user, err := h.service.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName        string  `json:"firstName" validate:"required,min=2,max=120,personname"`
		LastName         string  `json:"lastName" validate:"omitempty,min=2,max=120,personname"`
		Email            string  `json:"email" validate:"omitempty,email,max=190"`
		PhoneNumber      *string `json:"phoneNumber" validate:"omitempty,numeric,min=10,max=15"`
		PhoneCountryCode *string `json:"phoneCountryCode" validate:"omitempty,countrycode"`
		UserType         *string `json:"userType" validate:"omitempty,oneof=candidate employer admin"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	// 邮箱是 token 的 subject，允许原样回传但不允许修改
	if req.Email != "" && service.NormalizeEmail(req.Email) != user.Email {
		h.errorResponse(w, r, http.StatusBadRequest, "Email cannot be changed")
		return
	}

	var userType *domain.Role
	if req.UserType != nil && domain.Role(*req.UserType) != user.UserType {
		// 只有管理员可以修改用户类型
		if id, _ := auth.IdentityFrom(r.Context()); !id.IsAdmin() {
			h.errorResponse(w, r, http.StatusForbidden, "Only administrators can change the user type")
			return
		}
		role := domain.Role(*req.UserType)
		userType = &role
	}

	updated, err := h.service.UpdateUser(r.Context(), user.ID, service.UpdateUserInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PhoneNumber:      req.PhoneNumber,
		PhoneCountryCode: req.PhoneCountryCode,
		UserType:         userType,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, updated)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.service.DeleteUser(r.Context(), user.ID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
