package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-qr-portal/internal/config"
	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"github.com/jrsteele09/go-qr-portal/qrapi"
	"github.com/jrsteele09/go-qr-portal/qrcodes"
	"github.com/jrsteele09/go-qr-portal/server"
	"github.com/jrsteele09/go-qr-portal/sessionctx"
	"github.com/stretchr/testify/require"
)

const testToken = "session-token-1"

// fakeAPI stands in for the Auth/QR API and records every call by name.
type fakeAPI struct {
	mu sync.Mutex

	loginResult *qrapi.LoginResult
	loginErr    error
	meUser      *qrapi.User
	meErr       error
	changeErr   error
	logoutErr   error
	qrs         []qrcodes.QR
	listErr     error
	createErr   error
	deleteErr   error
	uploadURL   string
	uploadErr   error

	calls        []string
	created      []qrcodes.CreateRequest
	deleted      []string
	uploadTypes  []string
	uploadBodies []string
}

func (f *fakeAPI) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*qrapi.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("login")
	return f.loginResult, f.loginErr
}

func (f *fakeAPI) Me(_ context.Context, _ string) (*qrapi.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("me")
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.meUser == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	user := *f.meUser
	return &user, nil
}

func (f *fakeAPI) ChangePassword(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("change-password")
	return f.changeErr
}

func (f *fakeAPI) Logout(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("logout")
	return f.logoutErr
}

func (f *fakeAPI) ListQRs(_ context.Context, _ string) ([]qrcodes.QR, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	return f.qrs, f.listErr
}

func (f *fakeAPI) CreateQR(_ context.Context, _ string, create qrcodes.CreateRequest) (*qrcodes.QR, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	f.created = append(f.created, create)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &qrcodes.QR{ID: "new", ResourceURL: create.ResourceURL, LogoURL: create.LogoURL}, nil
}

func (f *fakeAPI) DeleteQR(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeAPI) Upload(_ context.Context, _, _, contentType string, file io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("upload")
	body, _ := io.ReadAll(file)
	f.uploadTypes = append(f.uploadTypes, contentType)
	f.uploadBodies = append(f.uploadBodies, string(body))
	return f.uploadURL, f.uploadErr
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Called(name string) bool {
	for _, c := range f.Calls() {
		if c == name {
			return true
		}
	}
	return false
}

type testEnv struct {
	srv      *server.Server
	api      *fakeAPI
	sessions *sessionctx.Manager
}

func newTestEnv(t *testing.T, api *fakeAPI) *testEnv {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("EDGE_JWT_SECRET", "")

	repo := sessionctx.NewInMemoryRepo()
	srv, err := server.New(config.New(), api, repo)
	require.NoError(t, err)
	return &testEnv{
		srv:      srv,
		api:      api,
		sessions: sessionctx.NewManager(repo, time.Hour),
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func withToken(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "token", Value: testToken})
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func confirmedUser(email string, mustChange bool) *qrapi.User {
	return &qrapi.User{Email: email, MustChangePassword: mustChange}
}
