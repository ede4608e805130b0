package handlers

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/api/socket"
	"github.com/spec-kit/hr-console/internal/auth"
	"github.com/spec-kit/hr-console/internal/domain"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

const socketUserKey = "socket_user"

// SocketHandler upgrades authenticated requests to the console channel.
type SocketHandler struct {
	base   context.Context
	hub    *socket.Hub
	router *socket.Router
	opts   socket.ClientOptions
	logger *zap.Logger
}

// NewSocketHandler constructs handler. Connections are closed when base is
// cancelled.
func NewSocketHandler(base context.Context, hub *socket.Hub, router *socket.Router, opts socket.ClientOptions, logger *zap.Logger) *SocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocketHandler{base: base, hub: hub, router: router, opts: opts, logger: logger}
}

// Upgrade rejects plain HTTP requests and hands the authenticated principal
// to the connection.
func (h *SocketHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	c.Locals(socketUserKey, user)
	return c.Next()
}

// Serve runs the connection pumps.
func (h *SocketHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, _ := conn.Locals(socketUserKey).(*domain.ConsoleUser)
		if user == nil {
			h.logger.Warn("socket connection without principal")
			_ = conn.Close()
			return
		}
		socket.NewClient(conn, user, h.hub, h.router, h.opts, h.logger).Run(h.base)
	})
}
