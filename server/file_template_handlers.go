package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/jrsteele09/go-qr-portal/internal/utils"
	"github.com/rs/zerolog"
)

const contentTypeHTML = "text/html; charset=utf-8"

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02 Jan 2006 15:04")
	},
	"deref": utils.Value[string],
	"millis": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
	"seconds": func(d time.Duration) int64 {
		secs := int64(d / time.Second)
		if d%time.Second != 0 {
			secs++
		}
		return secs
	},
}

// ParseTemplate parses a page together with the shared layout.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New("layout.html").Funcs(templateFuncs).ParseFS(TemplateFilesFS(), "layout.html", name)
}

type pages struct {
	login           *template.Template
	changePassword  *template.Template
	passwordChanged *template.Template
	dashboard       *template.Template
}

func (s *Server) parsePages() (*pages, error) {
	var p pages
	for name, dst := range map[string]**template.Template{
		"login.html":            &p.login,
		"change_password.html":  &p.changePassword,
		"password_changed.html": &p.passwordChanged,
		"dashboard.html":        &p.dashboard,
	} {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, err
		}
		*dst = tmpl
	}
	return &p, nil
}

// PageData is what every page template receives; Page carries the
// page-specific view model.
type PageData struct {
	AppName string
	Title   string
	Error   string
	Warning string
	Notice  string
	Page    any
}

func (s *Server) pageData(r *http.Request, title string, page any) PageData {
	q := r.URL.Query()
	return PageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Error:   q.Get(queryError),
		Warning: q.Get(queryWarning),
		Notice:  q.Get(queryNotice),
		Page:    page,
	}
}

// render buffers the page so a template error can still become a 500.
func render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data PageData) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		zerolog.Ctx(r.Context()).Err(err).Str("page", data.Title).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Err(err).Msg("Failed to write page")
	}
}
