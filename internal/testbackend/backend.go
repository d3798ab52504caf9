// Package testbackend is an in-process GraphQL backend for tests and demos.
// It implements the seven operations the client consumes, issues HS256
// access tokens in an access_token cookie, and can be told to fail.
package testbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrEthical07/authclient/api"
	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/jwt"
	"github.com/MrEthical07/authclient/session"
)

// Default messages, matching the production backend.
const (
	MsgLoginOK        = "Login successful"
	MsgInvalidCreds   = "Invalid credentials"
	MsgRegisterOK     = "Registration successful"
	MsgUsernameTaken  = "Username already exists"
	MsgRefreshOK      = "Token refreshed successfully"
	MsgInvalidRefresh = "Invalid refresh token"
)

const (
	issuer    = "self"
	accessTTL = 15 * time.Minute
)

type account struct {
	user     session.User
	password string
}

// Backend is a fake GraphQL server. The zero value is not usable; call New.
type Backend struct {
	srv    *httptest.Server
	secret []byte

	mu          sync.Mutex
	accounts    map[string]*account
	refresh     map[string]string
	resetTokens map[string]string
	calls       map[string]int
	statuses    []int
	errs        [][]graphql.Error
	now         func() time.Time
}

// New starts a backend with one user "alice"/"secret" and one admin
// "root"/"toor".
func New() *Backend {
	b := &Backend{
		secret:      []byte("testbackend-" + uuid.NewString()),
		accounts:    make(map[string]*account),
		refresh:     make(map[string]string),
		resetTokens: make(map[string]string),
		calls:       make(map[string]int),
		now:         time.Now,
	}
	b.AddUser(session.User{
		ID: "u-1", Username: "alice", Email: "alice@example.com",
		FirstName: "Alice", LastName: "Liddell", Activated: true,
		Roles: []session.Role{{ID: "r-1", Name: "ROLE_USER"}},
	}, "secret")
	b.AddUser(session.User{
		ID: "u-0", Username: "root", Email: "root@example.com",
		FirstName: "Root", LastName: "Admin", Activated: true,
		Roles: []session.Role{{ID: "r-1", Name: "ROLE_USER"}, {ID: "r-2", Name: "ROLE_ADMIN"}},
	}, "toor")
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// URL returns the GraphQL endpoint.
func (b *Backend) URL() string { return b.srv.URL + "/graphql" }

// BaseURL returns the server root.
func (b *Backend) BaseURL() string { return b.srv.URL }

// Close shuts the server down.
func (b *Backend) Close() { b.srv.Close() }

// AddUser registers an account.
func (b *Backend) AddUser(u session.User, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[u.Username] = &account{user: *u.Clone(), password: password}
}

// Calls returns how many times operation was requested.
func (b *Backend) Calls(operation string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[operation]
}

// FailNextStatus makes the next len(statuses) requests answer with the given
// HTTP statuses and an empty JSON object body.
func (b *Backend) FailNextStatus(statuses ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, statuses...)
}

// FailNextErrors makes the next request answer 200 with errs and null data.
func (b *Backend) FailNextErrors(errs ...graphql.Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs = append(b.errs, errs)
}

// SetClock overrides the token clock. Moving it past the access TTL makes
// every issued token expired.
func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// ResetToken returns the last reset token mailed to email.
func (b *Backend) ResetToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for token, addr := range b.resetTokens {
		if addr == email {
			return token
		}
	}
	return ""
}

type request struct {
	OperationName string          `json:"operationName"`
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables"`
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, graphql.Response{Errors: []graphql.Error{{Message: "malformed request"}}})
		return
	}

	b.mu.Lock()
	b.calls[req.OperationName]++
	if len(b.statuses) > 0 {
		status := b.statuses[0]
		b.statuses = b.statuses[1:]
		b.mu.Unlock()
		writeJSON(w, status, struct{}{})
		return
	}
	if len(b.errs) > 0 {
		errs := b.errs[0]
		b.errs = b.errs[1:]
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": nil, "errors": errs})
		return
	}
	b.mu.Unlock()

	var vars struct {
		Input       json.RawMessage `json:"input"`
		Email       string          `json:"email"`
		NewPassword string          `json:"newPassword"`
		Token       string          `json:"token"`
	}
	if len(req.Variables) > 0 {
		_ = json.Unmarshal(req.Variables, &vars)
	}

	switch req.OperationName {
	case api.OpLogin:
		var in api.LoginInput
		_ = json.Unmarshal(vars.Input, &in)
		b.login(w, in)
	case api.OpRegister:
		var in api.RegisterInput
		_ = json.Unmarshal(vars.Input, &in)
		b.register(w, in)
	case api.OpLogout:
		clearCookies(w)
		data(w, "logout", true)
	case api.OpMe:
		b.me(w, r)
	case api.OpRefreshToken:
		b.refreshToken(w, r)
	case api.OpRequestPasswordReset:
		b.requestReset(w, vars.Email)
	case api.OpResetPassword:
		b.resetPassword(w, vars.NewPassword, vars.Token)
	default:
		writeJSON(w, http.StatusOK, graphql.Response{Errors: []graphql.Error{{
			Message:    fmt.Sprintf("unknown operation %q", req.OperationName),
			Extensions: map[string]any{"code": "GRAPHQL_VALIDATION_FAILED"},
		}}})
	}
}

func (b *Backend) login(w http.ResponseWriter, in api.LoginInput) {
	b.mu.Lock()
	acct, ok := b.accounts[in.Username]
	b.mu.Unlock()
	if !ok || acct.password != in.Password {
		data(w, "login", api.AuthPayload{Success: false, Message: MsgInvalidCreds})
		return
	}
	if err := b.issue(w, acct.user); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data(w, "login", api.AuthPayload{Success: true, Message: MsgLoginOK, User: acct.user.Clone()})
}

func (b *Backend) register(w http.ResponseWriter, in api.RegisterInput) {
	b.mu.Lock()
	if _, taken := b.accounts[in.Username]; taken {
		b.mu.Unlock()
		data(w, "register", api.AuthPayload{Success: false, Message: MsgUsernameTaken})
		return
	}
	u := session.User{
		ID:        "u-" + uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Activated: true,
		Roles:     []session.Role{{ID: "r-1", Name: "ROLE_USER"}},
	}
	b.accounts[u.Username] = &account{user: u, password: in.Password}
	b.mu.Unlock()

	if err := b.issue(w, u); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data(w, "register", api.AuthPayload{Success: true, Message: MsgRegisterOK, User: u.Clone()})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(jwt.AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		data(w, "me", nil)
		return
	}
	claims, err := b.verify(cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"me": nil},
			"errors": []graphql.Error{{
				Message:    "Token expired",
				Path:       []any{"me"},
				Extensions: map[string]any{"code": "UNAUTHENTICATED"},
			}},
		})
		return
	}

	b.mu.Lock()
	acct, ok := b.accounts[claims.Subject]
	b.mu.Unlock()
	if !ok {
		data(w, "me", nil)
		return
	}
	data(w, "me", acct.user)
}

func (b *Backend) refreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(jwt.RefreshTokenCookie)
	if err != nil {
		data(w, "refreshToken", api.AuthPayload{Success: false, Message: MsgInvalidRefresh})
		return
	}

	b.mu.Lock()
	username, ok := b.refresh[cookie.Value]
	delete(b.refresh, cookie.Value)
	acct := b.accounts[username]
	b.mu.Unlock()
	if !ok || acct == nil {
		data(w, "refreshToken", api.AuthPayload{Success: false, Message: MsgInvalidRefresh})
		return
	}

	if err := b.issue(w, acct.user); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data(w, "refreshToken", api.AuthPayload{
		Success: true,
		Message: MsgRefreshOK,
		User:    &session.User{ID: acct.user.ID},
	})
}

func (b *Backend) requestReset(w http.ResponseWriter, email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acct := range b.accounts {
		if acct.user.Email == email {
			b.resetTokens[uuid.NewString()] = email
			data(w, "requestPasswordReset", true)
			return
		}
	}
	data(w, "requestPasswordReset", false)
}

func (b *Backend) resetPassword(w http.ResponseWriter, newPassword, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	email, ok := b.resetTokens[token]
	if !ok || newPassword == "" {
		data(w, "resetPassword", false)
		return
	}
	delete(b.resetTokens, token)
	for _, acct := range b.accounts {
		if acct.user.Email == email {
			acct.password = newPassword
		}
	}
	data(w, "resetPassword", true)
}

func (b *Backend) issue(w http.ResponseWriter, u session.User) error {
	b.mu.Lock()
	now := b.now()
	refreshToken := uuid.NewString()
	b.refresh[refreshToken] = u.Username
	b.mu.Unlock()

	scope := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		scope = append(scope, r.Name)
	}
	claims := jwt.AccessClaims{
		UserID: u.ID,
		Scope:  scope,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   u.Username,
			Issuer:    issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(accessTTL)),
		},
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return fmt.Errorf("sign access token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{Name: jwt.AccessTokenCookie, Value: signed, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: jwt.RefreshTokenCookie, Value: refreshToken, Path: "/", HttpOnly: true})
	return nil
}

func (b *Backend) verify(token string) (*jwt.AccessClaims, error) {
	b.mu.Lock()
	now := b.now
	b.mu.Unlock()

	var claims jwt.AccessClaims
	_, err := gojwt.ParseWithClaims(token, &claims, func(*gojwt.Token) (any, error) {
		return b.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(issuer),
		gojwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

func clearCookies(w http.ResponseWriter) {
	for _, name := range []string{jwt.AccessTokenCookie, jwt.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
}

func data(w http.ResponseWriter, field string, value any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{field: value}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
