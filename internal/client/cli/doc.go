// Package cli provides the interactive gophauth command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL. A
// background watcher pings the server and shows online/offline status in
// the prompt.
//
// Commands:
//   - register, verify, resend: create an account and confirm its email
//   - login, logout, me: session handling
//   - forgot, reset: password reset with an emailed code
//   - resetlink: password reset with a token from an emailed link
//
// Passwords are read from the terminal without echo. The REPL is started via
// App.Run(ctx), which blocks until the user exits.
package cli
