package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

var errPasswordMismatch = errors.New("passwords do not match")

// readNewPassword asks for a new password twice.
func readNewPassword() ([]byte, error) {
	first, err := getPassword("Enter new password", os.Stdout)
	if err != nil {
		return nil, err
	}
	second, err := getPassword("Repeat new password", os.Stdout)
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		common.WipeByteArray(first)
		return nil, errPasswordMismatch
	}
	return first, nil
}

// Forgot requests a password reset code.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.client.ForgotPassword(ctx, email, client.ResetModeOTP); err != nil {
		return err
	}

	fmt.Println("A password reset code was sent; run 'reset'.")
	return nil
}

// Reset sets a new password using the emailed reset code.
func (a *App) Reset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter reset code", os.Stdout)
	if err != nil {
		return err
	}

	password, err := readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.ResetPassword(ctx, email, code, password); err != nil {
		return err
	}

	fmt.Println("Password updated.")
	return nil
}

// ResetLink requests a reset link, then accepts the token from that link.
// An empty token leaves the link for later use.
func (a *App) ResetLink(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.client.ForgotPassword(ctx, email, client.ResetModeLink); err != nil {
		return err
	}
	fmt.Println("A password reset link was sent.")

	token, err := getSimpleText(a.reader, "Paste the token from the link (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	password, err := readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.ResetPasswordWithToken(ctx, token, password); err != nil {
		return err
	}

	fmt.Println("Password updated.")
	return nil
}
