package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/adminkit/adminctl/internal/apperr"
)

type fakeCommands struct {
	authenticated bool

	calls []string
	err   error
}

func (f *fakeCommands) loggedIn() bool { return f.authenticated }

func (f *fakeCommands) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.authenticated = true
	return f.err
}
func (f *fakeCommands) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return f.err
}
func (f *fakeCommands) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.authenticated = false
	return f.err
}
func (f *fakeCommands) WhoAmI(ctx context.Context) error {
	f.calls = append(f.calls, "whoami")
	return f.err
}
func (f *fakeCommands) ListUsers(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "users")
	return f.err
}
func (f *fakeCommands) ShowUser(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "user")
	return f.err
}
func (f *fakeCommands) AddUser(ctx context.Context) error {
	f.calls = append(f.calls, "adduser")
	return f.err
}
func (f *fakeCommands) EditUser(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "edituser")
	return f.err
}
func (f *fakeCommands) RemoveUser(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "deluser")
	return f.err
}
func (f *fakeCommands) Upload(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "upload")
	return f.err
}
func (f *fakeCommands) Dashboard(ctx context.Context) error {
	f.calls = append(f.calls, "status")
	return f.err
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) { lines = append(lines, fmt.Sprintln(args...)) }
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"whoami",
		"users page=1",
		"user 42",
		"upload /tmp/report.pdf",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeCommands{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	want := []string{"login", "whoami", "users", "user", "upload", "logout"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", exec.calls, want)
		}
	}
}

func TestRunREPL_ProtectedRefusedWhenAnonymous(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader("users\nwhoami\nquit\n")
	exec := &fakeCommands{authenticated: false}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	joined := strings.Join(*out, "")
	if !strings.Contains(joined, "Please log in first.") {
		t.Fatalf("missing refusal notice in output: %q", joined)
	}
}

func TestRunREPL_AliasResolves(t *testing.T) {
	captureOutput(t)

	input := strings.NewReader("u\nexit\n")
	exec := &fakeCommands{authenticated: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.calls) != 1 || exec.calls[0] != "users" {
		t.Fatalf("calls = %v, want [users]", exec.calls)
	}
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader("frobnicate\nexit\n")
	exec := &fakeCommands{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	joined := strings.Join(*out, "")
	if !strings.Contains(joined, "Unknown command") {
		t.Fatalf("missing unknown command notice: %q", joined)
	}
}

func TestRunREPL_HandlerErrorShowsMessage(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader("login\nexit\n")
	exec := &fakeCommands{err: apperr.New(apperr.CodeInvalidCredentials, "Invalid credentials")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	joined := strings.Join(*out, "")
	if !strings.Contains(joined, "Invalid credentials") {
		t.Fatalf("missing error notification: %q", joined)
	}
}
