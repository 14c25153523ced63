package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	err   error
}

func (f *fakeExec) call(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool                    { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error  { return f.call("register") }
func (f *fakeExec) Verify(ctx context.Context) error    { return f.call("verify") }
func (f *fakeExec) Resend(ctx context.Context) error    { return f.call("resend") }
func (f *fakeExec) Me(ctx context.Context) error        { return f.call("me") }
func (f *fakeExec) Forgot(ctx context.Context) error    { return f.call("forgot") }
func (f *fakeExec) Reset(ctx context.Context) error     { return f.call("reset") }
func (f *fakeExec) ResetLink(ctx context.Context) error { return f.call("resetlink") }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.call("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.call("logout")
}

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"register",
		"verify",
		"resend",
		"login",
		"me",
		"forgot",
		"reset",
		"resetlink",
		"logout",
		"exit",
		"register",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	want := []string{"register", "verify", "resend", "login", "me", "forgot", "reset", "resetlink", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{err: errors.New("invalid or expired code")}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("verify\nfoobar\n"))

	out := strings.Join(*lines, "\n")
	if !strings.Contains(out, "Error: invalid or expired code") {
		t.Fatalf("error not printed: %q", out)
	}
	if !strings.Contains(out, "Unknown command: foobar") {
		t.Fatalf("unknown command not reported: %q", out)
	}
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := capturePrintln(t)

	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, rdr("help\nquit\n"))

	out := strings.Join(*lines, "\n")
	if !strings.Contains(out, "me,") || !strings.Contains(out, "logout") {
		t.Fatalf("logged-in help missing commands: %q", out)
	}
	if !strings.Contains(out, "Bye!") {
		t.Fatalf("quit not acknowledged: %q", out)
	}
}

func TestRunREPL_EOFWithoutNewline(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("me"))

	if len(exec.calls) != 1 || exec.calls[0] != "me" {
		t.Fatalf("calls = %v", exec.calls)
	}
}
