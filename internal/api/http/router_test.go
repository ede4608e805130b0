package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/api/http/handlers"
	"github.com/spec-kit/hr-console/internal/api/socket"
	"github.com/spec-kit/hr-console/internal/auth"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/imagehost"
	"github.com/spec-kit/hr-console/internal/observability"
	"github.com/spec-kit/hr-console/internal/service"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubUsers map[string]*domain.ConsoleUser

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.ConsoleUser, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

type stubLogin struct {
	tokens *auth.TokenManager
	user   *domain.ConsoleUser
}

func (s stubLogin) Login(_ context.Context, email, password string) (*service.LoginResult, error) {
	if email != s.user.Email || password != "correct horse" {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokens.GenerateToken(s.user.ID, s.user.Role)
	if err != nil {
		return nil, err
	}
	return &service.LoginResult{User: s.user, Token: token, ExpiresAt: exp}, nil
}

type stubUploader struct{ got []byte }

func (s *stubUploader) Upload(_ context.Context, _ string, r io.Reader) (*imagehost.Image, error) {
	s.got, _ = io.ReadAll(r)
	return &imagehost.Image{URL: "https://i.example/a.png", DisplayURL: "https://i.example/a.png"}, nil
}

type testServer struct {
	app      *fiber.App
	tokens   *auth.TokenManager
	uploader *stubUploader
	hr       *domain.ConsoleUser
	viewer   *domain.ConsoleUser
}

func newTestServer(t *testing.T, redisDown bool) *testServer {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", 5)
	hr := &domain.ConsoleUser{ID: "u-hr", Name: "Priya", Email: "priya@example.com", Role: domain.RoleHR, Active: true}
	viewer := &domain.ConsoleUser{ID: "u-view", Name: "Sam", Email: "sam@example.com", Role: domain.RoleViewer, Active: true}
	users := stubUsers{hr.ID: hr, viewer.ID: viewer}
	uploader := &stubUploader{}
	metrics := observability.NewMetrics("httptest")
	logger := zap.NewNop()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, MiddlewareConfig{Timeout: time.Second, AllowOrigins: "*"})

	hub := socket.NewHub(logger, metrics)
	router := socket.NewRouter(time.Second, logger, metrics)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("hr-console", "test", map[string]handlers.Pinger{
			"postgres": pingerFunc(func(context.Context) error { return nil }),
			"redis": pingerFunc(func(context.Context) error {
				if redisDown {
					return errors.New("connection refused")
				}
				return nil
			}),
		}),
		Auth:           handlers.NewAuthHandler(stubLogin{tokens: tokens, user: hr}),
		Uploads:        handlers.NewUploadHandler(uploader, logger),
		Socket:         handlers.NewSocketHandler(context.Background(), hub, router, socket.ClientOptions{}, logger),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, users),
		Metrics:        metrics,
	})
	app.Get("/boom", func(*fiber.Ctx) error { panic("boom") })

	return &testServer{app: app, tokens: tokens, uploader: uploader, hr: hr, viewer: viewer}
}

func (s *testServer) token(t *testing.T, u *domain.ConsoleUser) string {
	t.Helper()
	token, _, err := s.tokens.GenerateToken(u.ID, u.Role)
	require.NoError(t, err)
	return token
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	down := newTestServer(t, true)
	resp, err = down.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeError(t, resp)
	require.Equal(t, "DEPENDENCY_UNAVAILABLE", body.Error.Code)
	require.Equal(t, "connection refused", body.Error.Details["redis"])
	require.Equal(t, "ok", body.Error.Details["postgres"])
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"priya@example.com","password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				Role string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Data.Token)
	require.Equal(t, "HR", body.Data.User.Role)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"priya@example.com","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, apperrors.CodeUnauthorized, decodeError(t, resp).Error.Code)
}

func multipartImage(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t, false)

	body, contentType := multipartImage(t)
	req := httptest.NewRequest(http.MethodPost, "/uploads/images", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, contentType = multipartImage(t)
	req = httptest.NewRequest(http.MethodPost, "/uploads/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.token(t, s.viewer))
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, contentType = multipartImage(t)
	req = httptest.NewRequest(http.MethodPost, "/uploads/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.token(t, s.hr))
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, []byte("\x89PNG\r\n\x1a\n"), s.uploader.got)
}

func TestSocketHandshake(t *testing.T) {
	s := newTestServer(t, false)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/ws?token=garbage", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid token", decodeError(t, resp).Error.Message)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/ws?token="+s.token(t, s.hr), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestMetricsAndErrors(t *testing.T) {
	s := newTestServer(t, false)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, apperrors.CodeNotFound, decodeError(t, resp).Error.Code)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, apperrors.CodeInternal, decodeError(t, resp).Error.Code)
}
