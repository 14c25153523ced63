// Package services contains the server-side business logic. CredentialService
// owns the account lifecycle: registration, email verification with one-time
// codes, login and password reset.
package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RegisterInput is the profile submitted at sign-up. UserName and PhoneNumber
// are optional; when set they must be unique.
type RegisterInput struct {
	Email       string
	UserName    string
	FullName    string
	PhoneNumber string
	Password    string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Account *models.Account
	Token   string
}

// CredentialService implements the credential lifecycle on top of the store.
// It keeps no state of its own between calls.
type CredentialService struct {
	store   repomanager.RepositoryManager
	hasher  auth.PasswordHasher
	tokens  *auth.TokenIssuer
	sender  notify.Sender
	limiter ratelimit.Limiter
	metrics *metrics.Metrics
	logger  logging.Logger

	otpValidity   time.Duration
	resetValidity time.Duration
	frontendURL   string

	// decoyHash is compared against when the email is unknown, so both login
	// failure paths cost one bcrypt comparison.
	decoyHash string

	now           func() time.Time
	newCode       func() (string, error)
	newResetToken func() (string, error)
}

// NewCredentialService wires the service from its collaborators and the
// server config.
func NewCredentialService(store repomanager.RepositoryManager, sender notify.Sender, limiter ratelimit.Limiter,
	m *metrics.Metrics, logger logging.Logger, cfg *config.Config) (*CredentialService, error) {

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	decoy, err := hasher.Hash("decoy-password-never-matches")
	if err != nil {
		return nil, err
	}

	return &CredentialService{
		store:         store,
		hasher:        hasher,
		tokens:        auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.SessionTokenValidityDuration),
		sender:        sender,
		limiter:       limiter,
		metrics:       m,
		logger:        logger.With("module", "credentials"),
		otpValidity:   cfg.OTPValidityDuration,
		resetValidity: cfg.ResetTokenValidityDuration,
		frontendURL:   strings.TrimRight(cfg.FrontendURL, "/"),
		decoyHash:     decoy,
		now:           time.Now,
		newCode:       func() (string, error) { return common.GenerateNumericCode(common.OTPLength) },
		newResetToken: func() (string, error) { return common.MakeRandHexString(common.ResetTokenSize) },
	}, nil
}

// Tokens exposes the session token issuer for transport middleware.
func (s *CredentialService) Tokens() *auth.TokenIssuer {
	return s.tokens
}

// Register creates a pending account and emails it a verification code.
// A taken email, username or phone number yields common.ErrorAlreadyExists.
// If the code cannot be delivered the account is kept and
// common.ErrorDependencyFailure is returned; ResendOTP recovers from that.
func (s *CredentialService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	email := common.NormalizeEmail(in.Email)
	accounts := s.store.Accounts()

	_, err := accounts.GetByEmail(ctx, email)
	if err == nil {
		s.fail(ctx, "register", "email_taken", "email", email)
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "account lookup failed", "email", email, "err", err)
		return nil, common.ErrorInternal
	}

	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	account, err := accounts.Create(ctx, &models.Account{
		Email:        email,
		UserName:     common.NormalizeUserName(in.UserName),
		FullName:     strings.TrimSpace(in.FullName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: hash,
		Status:       models.StatusPending,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.fail(ctx, "register", "duplicate", "email", email)
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "account create failed", "email", email, "err", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "account registered", "email", email, "account_id", account.ID)
	s.metrics.AuthSuccesses.With("method", "register").Add(1)

	if err := s.issueCode(ctx, email, models.PurposeVerification); err != nil {
		return nil, err
	}
	return account, nil
}

// SendOTP issues a fresh verification code for an existing account and
// emails it. Earlier codes stop working.
func (s *CredentialService) SendOTP(ctx context.Context, email string) error {
	return s.sendCode(ctx, "send_otp", common.NormalizeEmail(email), models.PurposeVerification)
}

// ResendOTP is SendOTP for clients that already asked once.
func (s *CredentialService) ResendOTP(ctx context.Context, email string) error {
	return s.sendCode(ctx, "resend_otp", common.NormalizeEmail(email), models.PurposeVerification)
}

// VerifyOTP consumes a verification code and activates the account. Wrong,
// expired and already used codes all yield common.ErrorInvalidCredential.
// Attempts count against the rate limit of the email.
func (s *CredentialService) VerifyOTP(ctx context.Context, email, code string) (*models.Account, error) {
	email = common.NormalizeEmail(email)
	if err := s.allowAttempt(ctx, email, models.PurposeVerification); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.store.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Codes().Consume(ctx, email, models.PurposeVerification, code, s.now()); err != nil {
			return err
		}
		a, err := r.Accounts().Activate(ctx, email)
		if err != nil {
			return err
		}
		account = a
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.fail(ctx, "verify_otp", "invalid_code", "email", email)
			return nil, common.ErrorInvalidCredential
		}
		s.logger.Error(ctx, "verification failed", "email", email, "err", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "account verified", "email", email, "account_id", account.ID)
	s.metrics.AuthSuccesses.With("method", "verify_otp").Add(1)
	return account, nil
}

// Login checks the password and issues a session token. Unknown email and
// wrong password both yield common.ErrorUnauthorized.
func (s *CredentialService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = common.NormalizeEmail(email)

	account, err := s.store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Compare(s.decoyHash, password)
			s.fail(ctx, "login", "unknown_email", "email", email)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "account lookup failed", "email", email, "err", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Compare(account.PasswordHash, password) {
		s.fail(ctx, "login", "bad_password", "email", email)
		return nil, common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "account_id", account.ID, "err", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login", "account_id", account.ID, "status", string(account.Status))
	s.metrics.AuthSuccesses.With("method", "login").Add(1)
	return &LoginResult{Account: account, Token: token}, nil
}

// ForgotPassword emails a password reset code to an existing account.
func (s *CredentialService) ForgotPassword(ctx context.Context, email string) error {
	return s.sendCode(ctx, "forgot_password", common.NormalizeEmail(email), models.PurposePasswordReset)
}

// ResetPassword consumes a password reset code and replaces the password hash
// in one transaction, which also clears any outstanding reset link. Wrong,
// expired and used codes yield common.ErrorInvalidCredential and leave the
// password unchanged. Attempts are rate limited like VerifyOTP.
func (s *CredentialService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = common.NormalizeEmail(email)
	if err := s.allowAttempt(ctx, email, models.PurposePasswordReset); err != nil {
		return err
	}

	hash, err := s.hashPassword(ctx, newPassword)
	if err != nil {
		return err
	}

	err = s.store.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Codes().Consume(ctx, email, models.PurposePasswordReset, code, s.now()); err != nil {
			return err
		}
		return r.Accounts().UpdatePassword(ctx, email, hash)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.fail(ctx, "reset_password", "invalid_code", "email", email)
			return common.ErrorInvalidCredential
		}
		s.logger.Error(ctx, "password reset failed", "email", email, "err", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password reset", "email", email, "via", "code")
	s.metrics.AuthSuccesses.With("method", "reset_password").Add(1)
	return nil
}

// RequestPasswordResetLink emails a single-use reset link to an existing
// account. Only a digest of the token is stored; a new request replaces the
// previous token.
func (s *CredentialService) RequestPasswordResetLink(ctx context.Context, email string) error {
	email = common.NormalizeEmail(email)

	if err := s.requireAccount(ctx, "reset_link", email); err != nil {
		return err
	}
	if err := s.allow(ctx, "reset_link", email); err != nil {
		return err
	}

	token, err := s.newResetToken()
	if err != nil {
		s.logger.Error(ctx, "reset token generation failed", "err", err)
		return common.ErrorInternal
	}

	expires := s.now().Add(s.resetValidity)
	if err := s.store.Accounts().SetResetToken(ctx, email, common.HashToken(token), expires); err != nil {
		s.logger.Error(ctx, "reset token store failed", "email", email, "err", err)
		return common.ErrorInternal
	}

	link := s.frontendURL + "/auth/reset-password?token=" + url.QueryEscape(token)
	if err := s.sender.SendResetLink(ctx, email, link); err != nil {
		s.logger.Warn(ctx, "reset link delivery failed", "email", email, "err", err)
		s.metrics.NotificationFailures.With("kind", "reset_link").Add(1)
		return common.ErrorDependencyFailure
	}

	s.logger.Info(ctx, "reset link issued", "email", email, "expires_at", expires)
	return nil
}

// ResetPasswordWithToken sets a new password using a reset link token and
// drops any pending reset code of the account in the same transaction.
// Unknown, used and expired tokens yield common.ErrorInvalidCredential.
func (s *CredentialService) ResetPasswordWithToken(ctx context.Context, token, newPassword string) error {
	if token == "" {
		s.fail(ctx, "reset_password_token", "empty_token")
		return common.ErrorInvalidCredential
	}

	hash, err := s.hashPassword(ctx, newPassword)
	if err != nil {
		return err
	}

	var email string
	err = s.store.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		e, err := r.Accounts().ResetPasswordByToken(ctx, common.HashToken(token), hash, s.now())
		if err != nil {
			return err
		}
		email = e
		return r.Codes().Invalidate(ctx, e, models.PurposePasswordReset)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.fail(ctx, "reset_password_token", "invalid_token")
			return common.ErrorInvalidCredential
		}
		s.logger.Error(ctx, "password reset failed", "err", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password reset", "email", email, "via", "link")
	s.metrics.AuthSuccesses.With("method", "reset_password_token").Add(1)
	return nil
}

// GetAccount returns the account with the given ID.
func (s *CredentialService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.store.Accounts().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "account_id", id, "err", err)
		return nil, common.ErrorInternal
	}
	return a, nil
}

// PurgeExpired deletes expired one-time codes.
func (s *CredentialService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.Codes().DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error(ctx, "purge failed", "err", err)
		return 0, common.ErrorInternal
	}
	if n > 0 {
		s.logger.Info(ctx, "expired codes purged", "count", n)
	}
	return n, nil
}

// --- helpers below ---

func (s *CredentialService) sendCode(ctx context.Context, method, email string, purpose models.CodePurpose) error {
	if err := s.requireAccount(ctx, method, email); err != nil {
		return err
	}
	if err := s.allow(ctx, string(purpose), email); err != nil {
		return err
	}
	return s.issueCode(ctx, email, purpose)
}

func (s *CredentialService) requireAccount(ctx context.Context, method, email string) error {
	if _, err := s.store.Accounts().GetByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.fail(ctx, method, "unknown_email", "email", email)
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "email", email, "err", err)
		return common.ErrorInternal
	}
	return nil
}

func (s *CredentialService) allow(ctx context.Context, scope, email string) error {
	if err := s.limiter.Allow(ctx, scope+":"+email); err != nil {
		if errors.Is(err, common.ErrorTooManyRequests) {
			s.fail(ctx, scope, "rate_limited", "email", email)
			return common.ErrorTooManyRequests
		}
		s.logger.Error(ctx, "rate limiter unavailable", "err", err)
		return common.ErrorDependencyFailure
	}
	return nil
}

// allowAttempt limits guesses at codes of the given purpose for one email.
func (s *CredentialService) allowAttempt(ctx context.Context, email string, purpose models.CodePurpose) error {
	return s.allow(ctx, "attempt:"+string(purpose), email)
}

// issueCode stores a new code for (email, purpose), replacing older ones, and
// sends it. The stored code is kept when delivery fails.
func (s *CredentialService) issueCode(ctx context.Context, email string, purpose models.CodePurpose) error {
	code, err := s.newCode()
	if err != nil {
		s.logger.Error(ctx, "code generation failed", "err", err)
		return common.ErrorInternal
	}

	now := s.now()
	otc := &models.OneTimeCode{
		ID:        uuid.NewString(),
		Email:     email,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.otpValidity),
	}
	if err := s.store.Codes().Replace(ctx, otc); err != nil {
		s.logger.Error(ctx, "code store failed", "email", email, "purpose", string(purpose), "err", err)
		return common.ErrorInternal
	}
	s.metrics.CodesIssued.With("purpose", string(purpose)).Add(1)

	if err := s.sender.SendOTP(ctx, email, code, purpose); err != nil {
		s.logger.Warn(ctx, "code delivery failed", "email", email, "purpose", string(purpose), "err", err)
		s.metrics.NotificationFailures.With("kind", "otp").Add(1)
		return common.ErrorDependencyFailure
	}

	s.logger.Info(ctx, "code issued", "email", email, "purpose", string(purpose), "expires_at", otc.ExpiresAt)
	return nil
}

func (s *CredentialService) hashPassword(ctx context.Context, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return "", common.ErrorValidation
		}
		s.logger.Error(ctx, "password hash failed", "err", err)
		return "", common.ErrorInternal
	}
	return hash, nil
}

func (s *CredentialService) fail(ctx context.Context, method, reason string, args ...any) {
	s.logger.Warn(ctx, method+" rejected", append([]any{"reason", reason}, args...)...)
	s.metrics.AuthFailures.With("method", method).Add(1)
}
