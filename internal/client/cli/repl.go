package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	ResetLink(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the gophauth CLI.
//
// It reads a line from reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. Command prompts read from the same reader, so the REPL
// must not buffer input on its own. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - verify         — confirm email with the emailed code
//	  - resend         — send a new verification code
//	  - login          — authenticate
//	  - forgot         — request a password reset code
//	  - reset          — set a new password with the reset code
//	  - resetlink      — reset the password through an emailed link
//	  - exit | quit    — leave the program
//
//	Logged in, additionally:
//	  - me             — show the current account
//	  - logout         — end the session
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gauth %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		err = nil
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, verify, resend, forgot, reset, resetlink, logout, exit")
			} else {
				printlnFn("Available commands: register, verify, resend, login, forgot, reset, resetlink, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "verify":
			err = a.Verify(ctx)

		case "resend":
			err = a.Resend(ctx)

		case "login":
			err = a.Login(ctx)

		case "forgot":
			err = a.Forgot(ctx)

		case "reset":
			err = a.Reset(ctx)

		case "resetlink":
			err = a.ResetLink(ctx)

		case "me":
			err = a.Me(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
