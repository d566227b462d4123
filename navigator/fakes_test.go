package navigator_test

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-qr-portal/qrapi"
	"github.com/jrsteele09/go-qr-portal/sessionctx"
)

// fakeAuthService records calls and answers from canned results.
type fakeAuthService struct {
	mu sync.Mutex

	loginResult *qrapi.LoginResult
	loginErr    error
	meUser      *qrapi.User
	meErr       error
	changeErr   error

	loginCalls  int
	meCalls     []string
	changeCalls []string
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (*qrapi.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func (f *fakeAuthService) Me(_ context.Context, token string) (*qrapi.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls = append(f.meCalls, token)
	return f.meUser, f.meErr
}

func (f *fakeAuthService) ChangePassword(_ context.Context, _, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changeCalls = append(f.changeCalls, newPassword)
	return f.changeErr
}

func newSessions() *sessionctx.Manager {
	return sessionctx.NewManager(sessionctx.NewInMemoryRepo(), time.Hour)
}
