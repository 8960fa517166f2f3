package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/maidmanager/internal/api"
	"github.com/dukerupert/maidmanager/internal/model"
	"github.com/dukerupert/maidmanager/internal/observe"
)

type AuthAPI interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
}

// TokenStore persists the credential across restarts.
type TokenStore interface {
	SaveToken(token string) error
	FetchToken() (string, bool, error)
	ClearToken() error
}

// CredentialHolder is the in-memory credential read by the API client.
type CredentialHolder interface {
	Token() string
	Set(token string)
	Clear()
}

var ErrNotAuthenticated = errors.New("not logged in")

// Auth drives login, register and logout.
type Auth struct {
	api    AuthAPI
	tokens TokenStore
	cred   CredentialHolder
	logger *slog.Logger

	// writeMu keeps the credential single-writer.
	writeMu sync.Mutex

	state   *observe.State[AuthState]
	results *observe.Events[AuthResult]
}

func NewAuth(a AuthAPI, tokens TokenStore, cred CredentialHolder, logger *slog.Logger) *Auth {
	return &Auth{
		api:     a,
		tokens:  tokens,
		cred:    cred,
		logger:  logger,
		state:   observe.NewState(AuthUnknown),
		results: observe.NewEvents(AuthResult{Kind: PhaseIdle}),
	}
}

func (a *Auth) State() *observe.State[AuthState] { return a.state }

func (a *Auth) Results() *observe.Events[AuthResult] { return a.results }

// Start resolves the Unknown state from the session store.
func (a *Auth) Start(ctx context.Context) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	token, ok, err := a.tokens.FetchToken()
	if err != nil {
		a.state.Set(AuthUnauthenticated)
		return fmt.Errorf("fetch saved token: %w", err)
	}
	if !ok {
		a.cred.Clear()
		a.state.Set(AuthUnauthenticated)
		return nil
	}
	a.cred.Set(token)
	a.state.Set(AuthAuthenticated)
	a.logger.Debug("restored session")
	return nil
}

func (a *Auth) Register(ctx context.Context, name, email, password string) error {
	return a.attempt(ctx, "Registration failed", func(ctx context.Context) (*model.AuthResponse, error) {
		return a.api.Register(ctx, model.RegisterRequest{Name: name, Email: email, Password: password})
	})
}

func (a *Auth) Login(ctx context.Context, email, password string) error {
	return a.attempt(ctx, "Invalid credentials", func(ctx context.Context) (*model.AuthResponse, error) {
		return a.api.Login(ctx, model.LoginRequest{Email: email, Password: password})
	})
}

func (a *Auth) attempt(ctx context.Context, fallback string, call func(context.Context) (*model.AuthResponse, error)) error {
	a.results.Emit(AuthResult{Kind: PhaseLoading})

	resp, err := call(ctx)
	if err != nil {
		msg := api.Message(err, fallback)
		if errors.Is(err, api.ErrNoToken) {
			msg = fallback
			if resp != nil && resp.Msg != "" {
				msg = resp.Msg
			}
		}
		a.results.Emit(AuthResult{Kind: PhaseError, Message: msg})
		a.logger.Info("auth attempt failed", "error", err)
		return err
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.tokens.SaveToken(resp.Token); err != nil {
		a.results.Emit(AuthResult{Kind: PhaseError, Message: "could not save session: " + err.Error()})
		return fmt.Errorf("save token: %w", err)
	}
	a.cred.Set(resp.Token)
	a.results.Emit(AuthResult{Kind: PhaseIdle})
	a.state.Set(AuthAuthenticated)
	return nil
}

// Logout clears the credential. Calling it again is harmless.
func (a *Auth) Logout() error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.cred.Clear()
	err := a.tokens.ClearToken()
	a.state.Set(AuthUnauthenticated)
	if err != nil {
		a.logger.Warn("clear saved token", "error", err)
		return fmt.Errorf("clear saved token: %w", err)
	}
	return nil
}

// ResetResult returns the attempt channel to Idle.
func (a *Auth) ResetResult() {
	a.results.Emit(AuthResult{Kind: PhaseIdle})
}

// Identity is what the current token says about its holder. The token is
// not verified; the gateway remains the authority.
type Identity struct {
	UserID    string    `json:"user_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Opaque    bool      `json:"opaque"`
}

func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

func (a *Auth) WhoAmI() (Identity, error) {
	token := a.cred.Token()
	if token == "" {
		return Identity{}, ErrNotAuthenticated
	}
	return inspectToken(token), nil
}

func inspectToken(token string) Identity {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{Opaque: true}
	}

	var id Identity
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		id.UserID = sub
	} else if user, ok := claims["user"].(map[string]any); ok {
		id.UserID, _ = user["id"].(string)
	} else if uid, ok := claims["id"].(string); ok {
		id.UserID = uid
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	return id
}
