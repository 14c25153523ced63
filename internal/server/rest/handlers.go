package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

// Service is the credential service as seen by the HTTP handlers.
type Service interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Account, error)
	SendOTP(ctx context.Context, email string) error
	ResendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	RequestPasswordResetLink(ctx context.Context, email string) error
	ResetPasswordWithToken(ctx context.Context, token, newPassword string) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
}

type handlers struct {
	svc        Service
	sessionTTL time.Duration
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.svc.Register(r.Context(), services.RegisterInput{
		Email:       req.Email,
		UserName:    req.UserName,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		Message: "account created, verification code sent",
		Account: newAccountResponse(account),
	})
}

func (h *handlers) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.SendOTP(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "verification code sent"})
}

func (h *handlers) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.ResendOTP(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "verification code sent"})
}

func (h *handlers) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token, Account: newAccountResponse(res.Account)})
}

func (h *handlers) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var err error
	msg := "password reset code sent"
	if req.Mode == "link" {
		err = h.svc.RequestPasswordResetLink(r.Context(), req.Email)
		msg = "password reset link sent"
	} else {
		err = h.svc.ForgotPassword(r.Context(), req.Email)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var err error
	if req.Token != "" {
		err = h.svc.ResetPasswordWithToken(r.Context(), req.Token, req.NewPassword)
	} else {
		err = h.svc.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	account, err := h.svc.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(account))
}
