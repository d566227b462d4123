package navigator

import "github.com/jrsteele09/go-qr-portal/qrapi"

// Page paths the navigator routes between.
const (
	PathRoot           = "/"
	PathLogin          = "/login"
	PathChangePassword = "/change-password"
	PathDashboard      = "/dashboard"
)

// ViewState is the page a user should be looking at. It is always derived
// from the session and the user, never stored.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewChangePassword
	ViewDashboard
	ViewRedirecting
)

func (v ViewState) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewChangePassword:
		return "change-password"
	case ViewDashboard:
		return "dashboard"
	case ViewRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// Path is where the view is served. Redirecting has no page of its own.
func (v ViewState) Path() string {
	switch v {
	case ViewLogin:
		return PathLogin
	case ViewChangePassword:
		return PathChangePassword
	case ViewDashboard:
		return PathDashboard
	default:
		return ""
	}
}

// TargetFor is the view an authenticated user belongs on. A nil user has no
// session and belongs on the login page.
func TargetFor(user *qrapi.User) ViewState {
	switch {
	case user == nil:
		return ViewLogin
	case user.MustChangePassword:
		return ViewChangePassword
	default:
		return ViewDashboard
	}
}
