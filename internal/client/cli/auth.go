package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getConfirmation = GetConfirmation

var errTermsNotAccepted = errors.New("terms must be accepted to register")

// Register prompts for the sign-up form and creates a pending account. The
// server emails a verification code; see Verify.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	userName, err := getSimpleText(a.reader, "Enter user name (optional)", os.Stdout)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone number, digits only (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	agree, err := getConfirmation(a.reader, "Do you agree to the terms of service?", os.Stdout)
	if err != nil {
		return err
	}
	if !agree {
		return errTermsNotAccepted
	}

	account, err := a.client.Signup(ctx, client.SignupRequest{
		Email:        email,
		UserName:     userName,
		FullName:     fullName,
		PhoneNumber:  phone,
		Password:     string(password),
		AgreeToTerms: true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Account %s created. A verification code was sent to %s; run 'verify'.\n", account.ID, account.Email)
	return nil
}

// Verify consumes the emailed verification code.
func (a *App) Verify(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter verification code", os.Stdout)
	if err != nil {
		return err
	}

	account, err := a.client.VerifyOTP(ctx, email, code)
	if err != nil {
		return err
	}

	fmt.Printf("Email %s verified (status: %s)\n", account.Email, account.Status)
	return nil
}

// Resend asks the server for a new verification code.
func (a *App) Resend(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.client.ResendOTP(ctx, email); err != nil {
		return err
	}

	fmt.Println("A new verification code was sent.")
	return nil
}

// Login prompts for credentials and starts a session.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	account, err := a.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.email = account.Email
	a.setMode(ModeOnline)
	log.Printf("Login successful")
	if account.Status != "active" {
		fmt.Println("Your email is not verified yet; run 'verify'.")
	}
	return nil
}

// Logout forgets the session.
func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	a.email = ""
	return nil
}

// Me prints the logged-in account.
func (a *App) Me(ctx context.Context) error {
	account, err := a.client.Me(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", account.ID)
	fmt.Printf("Email:    %s\n", account.Email)
	if account.UserName != "" {
		fmt.Printf("Username: %s\n", account.UserName)
	}
	if account.FullName != "" {
		fmt.Printf("Name:     %s\n", account.FullName)
	}
	if account.PhoneNumber != "" {
		fmt.Printf("Phone:    %s\n", account.PhoneNumber)
	}
	fmt.Printf("Status:   %s\n", account.Status)
	return nil
}
