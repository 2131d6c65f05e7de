package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/service"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required,min=2,max=240,personname"`
		Email    string `json:"email" validate:"required,email,max=190"`
		Password string `json:"password" validate:"required,min=8,hasletter"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}

	res, err := h.service.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}

	res, err := h.service.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

// IssueToken 用共享密钥换取不带用户身份的 token，供脚本和其他服务调用
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}

	res, err := h.service.IssueAPIToken(r.Context(), req.Secret)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}

	if err := h.service.RequireResetPassword(r.Context(), req.Email); err != nil {
		h.serviceError(w, r, err)
		return
	}

	// 邮箱不存在时也返回同样的响应
	h.writeJSON(w, r, http.StatusOK, MessageResponse{Message: "If the email is registered, a verification code has been sent"})
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required,len=6,numeric"`
		Password string `json:"password" validate:"required,min=8,hasletter"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}

	if err := h.service.ConfirmResetPassword(r.Context(), req.Email, req.OTP, req.Password); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, MessageResponse{Message: "Password reset successfully"})
}
