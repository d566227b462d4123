package qrapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"github.com/jrsteele09/go-qr-portal/internal/utils"
	"github.com/jrsteele09/go-qr-portal/qrapi"
	"github.com/jrsteele09/go-qr-portal/qrcodes"
	"github.com/stretchr/testify/require"
)

const testToken = "session-token-1"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*qrapi.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return qrapi.New(srv.URL, "token", 2*time.Second), srv
}

func requireToken(t *testing.T, r *http.Request) {
	t.Helper()
	cookie, err := r.Cookie("token")
	require.NoError(t, err)
	require.Equal(t, testToken, cookie.Value)
}

func TestLogin(t *testing.T) {
	t.Run("success returns user and cookie", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, qrapi.PathLogin, r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "a@b.com", body["email"])
			require.Equal(t, "secret", body["password"])

			http.SetCookie(w, &http.Cookie{Name: "token", Value: testToken})
			_, _ = io.WriteString(w, `{"user":{"email":"a@b.com","mustChangePassword":true}}`)
		})

		result, err := client.Login(context.Background(), "a@b.com", "secret")
		require.NoError(t, err)
		require.Equal(t, testToken, result.Token)
		require.Equal(t, "a@b.com", result.User.Email)
		require.True(t, result.User.MustChangePassword)
	})

	t.Run("success without cookie", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"user":{"email":"a@b.com","mustChangePassword":false}}`)
		})

		result, err := client.Login(context.Background(), "a@b.com", "secret")
		require.NoError(t, err)
		require.Empty(t, result.Token)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Credenciales inválidas"}`)
		})

		_, err := client.Login(context.Background(), "a@b.com", "wrong")
		require.ErrorIs(t, err, apperrors.ErrAuth)
		require.Equal(t, "Credenciales inválidas", qrapi.MessageOf(err, "fallback"))

		var apiErr *qrapi.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("error without message body", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.Login(context.Background(), "a@b.com", "secret")
		require.ErrorIs(t, err, apperrors.ErrAuth)
		require.Equal(t, "fallback", qrapi.MessageOf(err, "fallback"))
	})

	t.Run("server failure is not a rejection", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"message":"upstream down"}`)
		})

		_, err := client.Login(context.Background(), "a@b.com", "secret")
		require.ErrorIs(t, err, apperrors.ErrServer)
		require.NotErrorIs(t, err, apperrors.ErrAuth)
		require.Equal(t, "upstream down", qrapi.MessageOf(err, "fallback"))
	})
}

func TestNetworkErrors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := qrapi.New(srv.URL, "token", time.Second)

		_, err := client.Me(context.Background(), testToken)
		require.ErrorIs(t, err, apperrors.ErrNetwork)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)
		client := qrapi.New(srv.URL, "token", 50*time.Millisecond)

		_, err := client.Me(context.Background(), testToken)
		require.ErrorIs(t, err, apperrors.ErrNetwork)
	})
}

func TestMe(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, qrapi.PathMe, r.URL.Path)
			requireToken(t, r)
			_, _ = io.WriteString(w, `{"user":{"email":"a@b.com","mustChangePassword":false}}`)
		})

		user, err := client.Me(context.Background(), testToken)
		require.NoError(t, err)
		require.Equal(t, &qrapi.User{Email: "a@b.com"}, user)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.Me(context.Background(), testToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("2xx without user", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{}`)
		})

		_, err := client.Me(context.Background(), testToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestChangePasswordAndLogout(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r)
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case qrapi.PathChangePassword:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["newPassword"] == "rejected!" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"message":"too weak"}`)
				return
			}
			_, _ = io.WriteString(w, `{"ok":true}`)
		case qrapi.PathLogout:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	require.NoError(t, client.ChangePassword(context.Background(), testToken, "new-password"))
	err := client.ChangePassword(context.Background(), testToken, "rejected!")
	require.ErrorIs(t, err, apperrors.ErrAuth)
	require.Equal(t, "too weak", qrapi.MessageOf(err, ""))
	require.NoError(t, client.Logout(context.Background(), testToken))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"POST " + qrapi.PathChangePassword,
		"POST " + qrapi.PathChangePassword,
		"POST " + qrapi.PathLogout,
	}, calls)
}

func TestListQRs(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []string
	}{
		{"bare array", `[{"_id":"1","url":"u1","resourceUrl":"r1","createdAt":"2024-05-01T10:00:00.000Z"}]`, []string{"1"}},
		{"wrapped", `{"qrs":[{"_id":"1"},{"_id":"2","logoUrl":"l2"}]}`, []string{"1", "2"}},
		{"other object", `{"items":[]}`, []string{}},
		{"null", `null`, []string{}},
		{"wrapped null", `{"qrs":null}`, []string{}},
		{"odd dates kept", `[{"_id":"1","createdAt":"2024-05-01T10:00:00.000Z"},{"_id":"2","createdAt":""},{"_id":"3","createdAt":1714557600000}]`, []string{"1", "2", "3"}},
		{"wrapped odd date kept", `{"qrs":[{"_id":"1","createdAt":"2024-05-01 10:00:00"}]}`, []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				requireToken(t, r)
				_, _ = io.WriteString(w, tt.body)
			})

			list, err := client.ListQRs(context.Background(), testToken)
			require.NoError(t, err)
			ids := make([]string, 0, len(list))
			for _, qr := range list {
				ids = append(ids, qr.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("server error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.ListQRs(context.Background(), testToken)
		require.ErrorIs(t, err, apperrors.ErrServer)
	})

	for _, body := range []string{`[{"_id":1}]`, `{"qrs":[{"_id":"1","resourceUrl":{}}]}`} {
		t.Run("undecodable record "+body, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			list, err := client.ListQRs(context.Background(), testToken)
			require.ErrorIs(t, err, apperrors.ErrServer)
			require.Nil(t, list)
		})
	}
}

func TestCreateQR(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "", body["url"])
		require.Equal(t, "https://example.com/menu.pdf", body["resourceUrl"])
		require.Contains(t, body, "logoUrl")
		require.Nil(t, body["logoUrl"])
		_, _ = io.WriteString(w, `{"_id":"abc","url":"https://cdn/qr.png","resourceUrl":"https://example.com/menu.pdf"}`)
	})

	qr, err := client.CreateQR(context.Background(), testToken, qrcodes.CreateRequest{ResourceURL: "https://example.com/menu.pdf"})
	require.NoError(t, err)
	require.Equal(t, "abc", qr.ID)
	require.Equal(t, "", utils.Value(qr.LogoURL))
}

func TestDeleteQR(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == qrapi.PathQRs+"/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"QR no encontrado"}`)
			return
		}
		require.Equal(t, qrapi.PathQRs+"/abc", r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"deleted"}`)
	})

	require.NoError(t, client.DeleteQR(context.Background(), testToken, "abc"))
	err := client.DeleteQR(context.Background(), testToken, "missing")
	require.ErrorIs(t, err, apperrors.ErrServer)
	require.Equal(t, "QR no encontrado", qrapi.MessageOf(err, ""))
	require.ErrorIs(t, client.DeleteQR(context.Background(), testToken, ""), apperrors.ErrValidation)
}

func TestUpload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r)
		require.Equal(t, qrapi.PathUpload, r.URL.Path)
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "logo.png", header.Filename)
		require.Equal(t, "image/png", header.Header.Get("Content-Type"))
		require.Equal(t, "png-bytes", string(data))
		_, _ = io.WriteString(w, `{"url":"https://cdn/logo.png"}`)
	})

	url, err := client.Upload(context.Background(), testToken, "logo.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn/logo.png", url)
}
