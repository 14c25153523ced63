package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type signupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	UserName     string `json:"userName" validate:"omitempty,min=3,max=30"`
	FullName     string `json:"fullName" validate:"required,min=3,max=50"`
	PhoneNumber  string `json:"phoneNumber" validate:"omitempty,numeric,min=10,max=15"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	AgreeToTerms bool   `json:"agreeToTerms" validate:"eq=true"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric,len=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// forgotRequest selects the reset flow: "otp" (default) emails a code,
// "link" emails a reset link.
type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
	Mode  string `json:"mode" validate:"omitempty,oneof=otp link"`
}

// resetRequest carries either a token from a reset link or an email and
// reset code.
type resetRequest struct {
	Email       string `json:"email" validate:"required_without=Token"`
	OTP         string `json:"otp" validate:"required_without=Token"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type accountResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	UserName    string    `json:"userName,omitempty"`
	FullName    string    `json:"fullName,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		UserName:    a.UserName,
		FullName:    a.FullName,
		PhoneNumber: a.PhoneNumber,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type signupResponse struct {
	Message string          `json:"message"`
	Account accountResponse `json:"account"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"account"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// requestError is a malformed or invalid request body. Fields maps JSON field
// names to the rule they failed.
type requestError struct {
	msg    string
	fields map[string]string
}

func (e *requestError) Error() string {
	return e.msg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &requestError{msg: "malformed request body"}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return &requestError{msg: "validation failed", fields: fields}
		}
		return &requestError{msg: "validation failed"}
	}
	return nil
}
