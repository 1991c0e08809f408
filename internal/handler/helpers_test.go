package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/raahi/backend/internal/domain"
	"github.com/raahi/backend/internal/handler"
	"github.com/raahi/backend/internal/service"
)

// mockCards is a test double for handler.TravelCardServicer.
// Set only the method fields your test needs.
type mockCards struct {
	create func(ctx context.Context, userID uuid.UUID, in domain.NewTravelCard) (domain.TravelCard, error)
	get    func(ctx context.Context, userID, id uuid.UUID) (domain.TravelCard, error)
	list   func(ctx context.Context, userID uuid.UUID) ([]domain.TravelCard, error)
	update func(ctx context.Context, userID, id uuid.UUID, p domain.TravelCardPatch) (domain.TravelCard, error)
	delete func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockCards) Create(ctx context.Context, userID uuid.UUID, in domain.NewTravelCard) (domain.TravelCard, error) {
	return m.create(ctx, userID, in)
}
func (m *mockCards) Get(ctx context.Context, userID, id uuid.UUID) (domain.TravelCard, error) {
	return m.get(ctx, userID, id)
}
func (m *mockCards) List(ctx context.Context, userID uuid.UUID) ([]domain.TravelCard, error) {
	return m.list(ctx, userID)
}
func (m *mockCards) Update(ctx context.Context, userID, id uuid.UUID, p domain.TravelCardPatch) (domain.TravelCard, error) {
	return m.update(ctx, userID, id, p)
}
func (m *mockCards) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}

// mockUsers is a test double for handler.UserServicer.
type mockUsers struct {
	register func(ctx context.Context, email, password, fullName string) (service.Session, error)
	login    func(ctx context.Context, email, password string) (service.Session, error)
	me       func(ctx context.Context, current domain.CurrentUser) (domain.CurrentUser, error)
}

func (m *mockUsers) Register(ctx context.Context, email, password, fullName string) (service.Session, error) {
	return m.register(ctx, email, password, fullName)
}
func (m *mockUsers) Login(ctx context.Context, email, password string) (service.Session, error) {
	return m.login(ctx, email, password)
}
func (m *mockUsers) Me(ctx context.Context, current domain.CurrentUser) (domain.CurrentUser, error) {
	return m.me(ctx, current)
}

// stubAuth accepts exactly "Bearer good" and resolves it to caller.
type stubAuth struct{}

var caller = domain.CurrentUser{UserID: uuid.New(), Email: "ann@example.com", FullName: "Ann Marie Lee"}

func (stubAuth) Resolve(header string) (domain.CurrentUser, error) {
	if header != "Bearer good" {
		return domain.CurrentUser{}, domain.ErrUnauthorized
	}
	return caller, nil
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TravelCardServicer = (*mockCards)(nil)
	_ handler.UserServicer       = (*mockUsers)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks the way main.go does.
// Nil mocks are replaced by zero-valued ones; calling an unset method panics.
func newHTTPHandler(cards *mockCards, users *mockUsers, mw ...func(http.Handler) http.Handler) http.Handler {
	if cards == nil {
		cards = &mockCards{}
	}
	if users == nil {
		users = &mockUsers{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(cards, users, stubAuth{}, log).Routes(mw...)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends one request. authed adds the bearer token stubAuth accepts.
func do(t *testing.T, h http.Handler, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer good")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.False(t, body.Success)
	return body
}

var errDB = errors.New("connection refused")
