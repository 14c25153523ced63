// Package client is the HTTP client for the gophauth credential API.
//
// # Overview
//
// HTTPClient implements the Client interface against the /api/auth routes:
// Signup, SendOTP/ResendOTP, VerifyOTP, Login, ForgotPassword, ResetPassword,
// ResetPasswordWithToken and Me. After a successful Login the session token is
// kept in memory and sent as a bearer token on later calls.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable. Error responses are
// returned as *APIError, which matches the sentinel for its status code with
// errors.Is: ErrUnauthorized, ErrNotFound, ErrConflict, ErrInvalid,
// ErrTooManyRequests.
//
// An HTTPClient is safe for concurrent use.
package client
