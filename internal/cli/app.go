package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dukerupert/maidmanager/internal/api"
	"github.com/dukerupert/maidmanager/internal/config"
	"github.com/dukerupert/maidmanager/internal/controller"
	"github.com/dukerupert/maidmanager/internal/database"
	"github.com/dukerupert/maidmanager/internal/logging"
	"github.com/dukerupert/maidmanager/internal/sealbox"
	"github.com/dukerupert/maidmanager/internal/session"
)

// App is the wiring shared by every command: configuration, the local
// session database, the gateway client and the controllers.
type App struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader

	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	cred   *session.Credential
	client *api.Client
	auth   *controller.Auth
	roster *controller.Roster
	detail *controller.Detail

	stdin *bufio.Reader
}

func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{In: in, Out: out, Err: errOut}
}

// open loads configuration and restores the saved session. It runs once,
// before the first command that needs it.
func (a *App) open(ctx context.Context) error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.logger = logging.New(a.Err, level)

	timeout, _ := cfg.TimeoutDuration()

	passphrase := cfg.Passphrase
	if passphrase == "" {
		passphrase, err = sealbox.LoadOrCreatePassphrase(cfg.PassphrasePath())
		if err != nil {
			return fmt.Errorf("device passphrase: %w", err)
		}
	}

	db, err := database.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	tokens, err := session.NewStore(db, passphrase, a.logger.With("component", "session"))
	if err != nil {
		db.Close()
		return err
	}

	a.cfg = cfg
	a.db = db
	a.cred = &session.Credential{}
	a.client = api.NewClient(api.Config{
		BaseURL:     cfg.BaseURL,
		Timeout:     timeout,
		TokenHeader: cfg.TokenHeader,
		LogBodies:   cfg.LogBodies,
	}, a.cred, a.logger.With("component", "api"))
	a.auth = controller.NewAuth(a.client, tokens, a.cred, a.logger.With("component", "auth"))
	a.roster = controller.NewRoster(a.client, a.logger.With("component", "roster"))
	a.detail = controller.NewDetail(a.client, a.roster, a.logger.With("component", "detail"))

	if err := a.auth.Start(ctx); err != nil {
		a.logger.Warn("saved session unreadable", "error", err)
	}
	return nil
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// requireLogin opens the app and fails unless a credential is present.
func (a *App) requireLogin(ctx context.Context) error {
	if err := a.open(ctx); err != nil {
		return err
	}
	if a.auth.State().Value() != controller.AuthAuthenticated {
		return Failure{Message: "not logged in; run 'maidmanager login' first"}
	}
	return nil
}

// Failure is an error whose Message is fit to show the user as is. Err
// keeps the underlying cause for logs.
type Failure struct {
	Message string
	Err     error
}

func (f Failure) Error() string { return f.Message }

func (f Failure) Unwrap() error { return f.Err }

// failed turns a controller error into a Failure carrying the message the
// controller published. An unauthorized response also hints at login.
func failed(message string, err error) error {
	if message == "" {
		message = api.Message(err, "An unknown error occurred")
	}
	if api.IsUnauthorized(err) {
		message += " (session expired? run 'maidmanager login')"
	}
	return Failure{Message: message, Err: err}
}

// UserMessage returns what to print for err.
func UserMessage(err error) string {
	var f Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}

// readSecret prompts for a secret. A terminal gets a hidden prompt; any
// other input is read one line at a time so scripts can pipe values in.
func (a *App) readSecret(prompt string) (string, error) {
	if f, ok := a.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.Err, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.Err)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return a.readLine()
}

func (a *App) readLine() (string, error) {
	if a.stdin == nil {
		a.stdin = bufio.NewReader(a.In)
	}
	line, err := a.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPasswordFile reads a secret from path, dropping trailing newlines.
func readPasswordFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	s := strings.TrimRight(string(data), "\r\n")
	if s == "" {
		return "", fmt.Errorf("file %s is empty", path)
	}
	return s, nil
}
