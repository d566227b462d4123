package server

import "github.com/jrsteele09/go-qr-portal/navigator"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages guarded by the edge filter
	RouteIndex     = navigator.PathRoot
	RouteLogin     = navigator.PathLogin
	RouteDashboard = navigator.PathDashboard

	// Password gate, guarded by the session resolver only
	RouteChangePassword = navigator.PathChangePassword

	RouteLogout = "/logout"

	// Dashboard actions
	RouteDashboardUpload = "/dashboard/upload"
	RouteDashboardLogo   = "/dashboard/logo"
	RouteDashboardDraft  = "/dashboard/draft"
	RouteDashboardQRs    = "/dashboard/qrs"
	RouteDashboardDelete = "/dashboard/qrs/{id}/delete"

	RouteHealth = "/health"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)

// Query parameters carrying modal feedback across redirects
const (
	queryError         = "error"
	queryWarning       = "warning"
	queryNotice        = "notice"
	queryEmail         = "email"
	queryConfirmDelete = "confirm_delete"
)
