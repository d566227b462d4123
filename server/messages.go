package server

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"github.com/jrsteele09/go-qr-portal/navigator"
	"github.com/jrsteele09/go-qr-portal/qrapi"
	"github.com/jrsteele09/go-qr-portal/qrcodes"
)

// User-facing messages
const (
	msgMissingCredentials    = "Email and password are required"
	msgAuthFailed            = "Authentication failed"
	msgCannotConnect         = "Could not connect to the server"
	msgSessionNotEstablished = "Your session could not be established"
	msgPasswordMismatch      = "Passwords do not match"
	msgPasswordChangeFailed  = "Could not change the password"
	msgServerError           = "Server error"
	msgPasswordChanged       = "Password changed successfully"
	msgMissingURL            = "Missing URL: upload a file or enter a link"
	msgInvalidURL            = "Invalid URL"
	msgNoFile                = "Please select a file"
	msgUnsupportedType       = "Unsupported file type"
	msgUploadFailed          = "Upload failed"
	msgDraftNotSaved         = "The upload could not be attached, please try again"
	msgGenerateFailed        = "Could not generate the QR code"
	msgDeleteFailed          = "Could not delete the QR code"
	msgListFailed            = "Could not load your QR codes"
	msgGenerated             = "QR code generated"
	msgDeleted               = "QR code deleted"
	msgDocumentUploaded      = "File uploaded"
	msgLogoUploaded          = "Logo uploaded"
)

func loginMessage(err error) string {
	switch {
	case apperrors.Is(err, navigator.ErrMissingCredentials):
		return msgMissingCredentials
	case apperrors.Is(err, apperrors.ErrSessionInconsistency):
		return msgSessionNotEstablished
	case apperrors.Is(err, apperrors.ErrNetwork):
		return msgCannotConnect
	default:
		return qrapi.MessageOf(err, msgAuthFailed)
	}
}

func (s *Server) changePasswordMessage(err error) string {
	switch {
	case apperrors.Is(err, navigator.ErrPasswordMismatch):
		return msgPasswordMismatch
	case apperrors.Is(err, navigator.ErrPasswordTooShort):
		return fmt.Sprintf("Password must be at least %d characters", s.changePassword.MinLength())
	case apperrors.Is(err, apperrors.ErrNetwork):
		return msgServerError
	default:
		return qrapi.MessageOf(err, msgPasswordChangeFailed)
	}
}

func uploadMessage(err error, rule qrcodes.UploadRule) string {
	switch {
	case apperrors.Is(err, qrcodes.ErrNoFile):
		return msgNoFile
	case apperrors.Is(err, qrcodes.ErrUnsupportedType):
		return msgUnsupportedType
	case apperrors.Is(err, qrcodes.ErrFileTooLarge):
		return fmt.Sprintf("File is too large (max %d MB)", rule.MaxSize/(1024*1024))
	case apperrors.Is(err, apperrors.ErrNetwork):
		return msgCannotConnect
	default:
		return qrapi.MessageOf(err, msgUploadFailed)
	}
}

// apiMessage is used for the QR endpoints, where everything but a network
// failure is a server error.
func apiMessage(err error, fallback string) string {
	if apperrors.Is(err, apperrors.ErrNetwork) {
		return msgCannotConnect
	}
	return qrapi.MessageOf(err, fallback)
}

// statusFor picks the status a re-rendered form is served with.
func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrSessionInconsistency):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrNetwork),
		apperrors.Is(err, apperrors.ErrServer):
		return http.StatusBadGateway
	case apperrors.Is(err, apperrors.ErrAuth),
		apperrors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
