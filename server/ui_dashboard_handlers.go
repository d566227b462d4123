package server

import (
	"html/template"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"github.com/jrsteele09/go-qr-portal/internal/utils"
	"github.com/jrsteele09/go-qr-portal/navigator"
	"github.com/jrsteele09/go-qr-portal/qrcodes"
	"github.com/jrsteele09/go-qr-portal/sessionctx"
	"github.com/rs/zerolog"
)

const (
	formFieldFile   = "file"
	formFieldURL    = "url"
	formFieldAction = "action"
	formFieldTarget = "target"

	actionConfirm = "confirm"

	// Multipart bodies above this are spooled to disk
	multipartMemory = 1 << 20
)

// DashboardPageData is the dashboard view model.
type DashboardPageData struct {
	Email          string
	QRs            []qrcodes.QR
	Draft          sessionctx.Draft
	ConfirmDelete  *qrcodes.QR
	DocumentAccept string
	LogoAccept     string
	MaxDocumentMB  int64
	MaxLogoMB      int64
}

// DashboardHandler renders the QR list. The session check runs first so a
// user who still has to change their password never sees it.
func (s *Server) DashboardHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, token, ok := s.resolveView(w, r, navigator.ViewDashboard)
		if !ok {
			return
		}

		page := DashboardPageData{
			Email:          res.User.Email,
			DocumentAccept: strings.Join(s.uploadRules[qrcodes.UploadDocument].AllowedTypes, ","),
			LogoAccept:     strings.Join(s.uploadRules[qrcodes.UploadLogo].AllowedTypes, ","),
			MaxDocumentMB:  s.uploadRules[qrcodes.UploadDocument].MaxSize / (1024 * 1024),
			MaxLogoMB:      s.uploadRules[qrcodes.UploadLogo].MaxSize / (1024 * 1024),
		}
		if session, found := s.sessions.Lookup(token); found {
			page.Email = session.Email
			page.Draft = session.Draft
		}

		data := s.pageData(r, "Dashboard", nil)
		qrs, err := s.api.ListQRs(r.Context(), token)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to list QR codes")
			if data.Error == "" {
				data.Error = apiMessage(err, msgListFailed)
			}
		}
		page.QRs = qrs

		if id := r.URL.Query().Get(queryConfirmDelete); id != "" {
			for i := range qrs {
				if qrs[i].ID == id {
					page.ConfirmDelete = &qrs[i]
					break
				}
			}
		}

		data.Page = page
		render(w, r, tmpl, http.StatusOK, data)
	}
}

// UploadAction ties an upload kind to the draft field its URL fills.
type UploadAction struct {
	kind   qrcodes.UploadKind
	notice string
	apply  func(draft *sessionctx.Draft, url string)
}

var (
	UploadDocumentAction = UploadAction{
		kind:   qrcodes.UploadDocument,
		notice: msgDocumentUploaded,
		apply:  func(draft *sessionctx.Draft, url string) { draft.ResourceURL = url },
	}
	UploadLogoAction = UploadAction{
		kind:   qrcodes.UploadLogo,
		notice: msgLogoUploaded,
		apply:  func(draft *sessionctx.Draft, url string) { draft.LogoURL = url },
	}
)

// UploadHandler checks the file locally, forwards it to the API and keeps
// the returned URL in the session draft.
func (s *Server) UploadHandler(action UploadAction) http.HandlerFunc {
	rule := s.uploadRules[action.kind]
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.sessionToken(r)
		logger := zerolog.Ctx(r.Context()).With().Str("upload", string(action.kind)).Logger()

		// Leave room for the multipart framing around the file itself
		r.Body = http.MaxBytesReader(w, r.Body, rule.MaxSize+multipartMemory)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if apperrors.As(err, &tooLarge) {
				redirectWithError(w, r, RouteDashboard, uploadMessage(qrcodes.ErrFileTooLarge, rule))
				return
			}
			redirectWithError(w, r, RouteDashboard, uploadMessage(qrcodes.ErrNoFile, rule))
			return
		}
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				logger.Warn().Err(err).Msg("Failed to remove multipart temp files")
			}
		}()

		file, header, err := r.FormFile(formFieldFile)
		if err != nil {
			redirectWithError(w, r, RouteDashboard, uploadMessage(qrcodes.ErrNoFile, rule))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if err := rule.Check(contentType, header.Size); err != nil {
			logger.Info().Err(err).Str("content_type", contentType).Int64("size", header.Size).Msg("Upload rejected")
			redirectWithError(w, r, RouteDashboard, uploadMessage(err, rule))
			return
		}

		url, err := s.api.Upload(r.Context(), token, header.Filename, contentType, file)
		if err != nil {
			logger.Warn().Err(err).Msg("Upload failed")
			redirectWithError(w, r, RouteDashboard, uploadMessage(err, rule))
			return
		}

		if _, err := s.sessions.UpdateDraft(token, func(draft *sessionctx.Draft) { action.apply(draft, url) }); err != nil {
			logger.Warn().Err(err).Msg("Failed to keep uploaded URL")
			redirectWithError(w, r, RouteDashboard, msgDraftNotSaved)
			return
		}
		redirectWithNotice(w, r, RouteDashboard, action.notice)
	}
}

// ClearDraftHandler drops one or both uploaded files from the draft.
func (s *Server) ClearDraftHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		target := r.FormValue(formFieldTarget)
		_, err := s.sessions.UpdateDraft(s.sessionToken(r), func(draft *sessionctx.Draft) {
			switch target {
			case string(qrcodes.UploadDocument):
				draft.ResourceURL = ""
			case string(qrcodes.UploadLogo):
				draft.LogoURL = ""
			default:
				*draft = sessionctx.Draft{}
			}
		})
		if err != nil && !apperrors.Is(err, apperrors.ErrSessionNotFound) {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to clear draft")
		}
		redirectSuccess(w, r, RouteDashboard)
	}
}

// GenerateQRHandler creates a QR record for the uploaded file, or for the
// typed URL when nothing was uploaded. Nothing is sent for a missing or
// malformed URL.
func (s *Server) GenerateQRHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		token := s.sessionToken(r)

		var draft sessionctx.Draft
		if session, found := s.sessions.Lookup(token); found {
			draft = session.Draft
		}
		target := draft.ResourceURL
		if target == "" {
			target = strings.TrimSpace(r.FormValue(formFieldURL))
		}

		switch err := qrcodes.ValidateTargetURL(target); {
		case apperrors.Is(err, qrcodes.ErrMissingURL):
			redirectWithWarning(w, r, RouteDashboard, msgMissingURL)
			return
		case err != nil:
			redirectWithError(w, r, RouteDashboard, msgInvalidURL)
			return
		}

		create := qrcodes.CreateRequest{ResourceURL: target}
		if draft.LogoURL != "" {
			create.LogoURL = utils.Ptr(draft.LogoURL)
		}
		if _, err := s.api.CreateQR(r.Context(), token, create); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to create QR code")
			redirectWithError(w, r, RouteDashboard, apiMessage(err, msgGenerateFailed))
			return
		}

		if _, err := s.sessions.UpdateDraft(token, func(draft *sessionctx.Draft) { *draft = sessionctx.Draft{} }); err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("No draft to clear")
		}
		redirectWithNotice(w, r, RouteDashboard, msgGenerated)
	}
}

// DeleteQRHandler answers the delete confirmation. Only an explicit confirm
// reaches the API; anything else leaves the list as it was.
func (s *Server) DeleteQRHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		if r.FormValue(formFieldAction) != actionConfirm {
			redirectSuccess(w, r, RouteDashboard)
			return
		}

		id := r.PathValue("id")
		if err := s.api.DeleteQR(r.Context(), s.sessionToken(r), id); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("id", id).Msg("Failed to delete QR code")
			redirectWithError(w, r, RouteDashboard, apiMessage(err, msgDeleteFailed))
			return
		}
		redirectWithNotice(w, r, RouteDashboard, msgDeleted)
	}
}
