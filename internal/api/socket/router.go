package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/auth"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/observability"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// DefaultRequestTimeout bounds a request when the router is built without one.
const DefaultRequestTimeout = 30 * time.Second

// Request is one decoded request frame.
type Request struct {
	Event     string
	RequestID string
	Payload   json.RawMessage
	User      *domain.ConsoleUser
	ClientID  string
}

// Decode unmarshals the payload into dst. An absent payload leaves dst
// untouched.
func (r *Request) Decode(dst any) error {
	if len(r.Payload) == 0 || string(r.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Payload, dst); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"payload": err.Error()})
	}
	return nil
}

// HandlerFunc serves one event. The returned value becomes the `data` of the
// response.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

type route struct {
	handler  HandlerFunc
	roles    []domain.Role
	listLoad bool
}

// RouteOption customizes a registered route.
type RouteOption func(*route)

// WithRoles limits the route to principals holding one of roles.
func WithRoles(roles ...domain.Role) RouteOption {
	return func(r *route) {
		r.roles = append(r.roles, roles...)
	}
}

// ListLoad marks the route as the initial load of a list view. Such routes
// run under the router's list-load timeout when one is set.
func ListLoad() RouteOption {
	return func(r *route) {
		r.listLoad = true
	}
}

// Router dispatches request frames to handlers by event name.
type Router struct {
	routes      map[string]route
	timeout     time.Duration
	listTimeout time.Duration
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewRouter builds an empty router.
func NewRouter(timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Router {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		routes:  make(map[string]route),
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// SetListLoadTimeout bounds routes registered with ListLoad. A non-positive d
// falls back to the request timeout.
func (r *Router) SetListLoadTimeout(d time.Duration) {
	r.listTimeout = d
}

func (r *Router) timeoutFor(rt route) time.Duration {
	if rt.listLoad && r.listTimeout > 0 {
		return r.listTimeout
	}
	return r.timeout
}

// Handle registers handler for event. Registering an event twice panics.
func (r *Router) Handle(event string, handler HandlerFunc, opts ...RouteOption) {
	if _, exists := r.routes[event]; exists {
		panic(fmt.Sprintf("socket: duplicate handler for %s", event))
	}
	rt := route{handler: handler}
	for _, opt := range opts {
		opt(&rt)
	}
	r.routes[event] = rt
}

// Events lists registered event names.
func (r *Router) Events() []string {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	return names
}

var errTimedOut = apperrors.NewTimeout("request timed out")

func errUnknownEvent(event string) error {
	return apperrors.NewDomainError(apperrors.CodeNotFound, "unknown event "+event, http.StatusNotFound, nil)
}

type outcome struct {
	data any
	err  error
}

// Dispatch serves req and returns the encoded response frame.
func (r *Router) Dispatch(ctx context.Context, req *Request) []byte {
	start := time.Now()
	rt, ok := r.routes[req.Event]
	if !ok {
		r.metrics.RecordSocketEvent("unknown", observability.OutcomeError, time.Since(start))
		return encodeFailure(req.Event, req.RequestID, errUnknownEvent(req.Event))
	}
	if !auth.HasRole(req.User, rt.roles...) {
		r.metrics.RecordSocketEvent(req.Event, observability.OutcomeError, time.Since(start))
		return encodeFailure(req.Event, req.RequestID, apperrors.NewForbidden("insufficient role"))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeoutFor(rt))
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("socket handler panic",
					zap.String("event", req.Event),
					zap.String("request_id", req.RequestID),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))
				done <- outcome{err: apperrors.NewInternalError(fmt.Errorf("panic: %v", rec))}
			}
		}()
		data, err := rt.handler(ctx, req)
		done <- outcome{data: data, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			res.err = errTimedOut
		}
	case <-ctx.Done():
		res.err = errTimedOut
	}

	duration := time.Since(start)
	fields := []zap.Field{
		zap.String("event", req.Event),
		zap.String("request_id", req.RequestID),
		zap.String("client_id", req.ClientID),
		zap.Duration("duration", duration),
	}
	if req.User != nil {
		fields = append(fields, zap.String("user_id", req.User.ID))
	}

	if res.err != nil {
		result := observability.OutcomeError
		if errors.Is(res.err, errTimedOut) {
			result = observability.OutcomeTimeout
		}
		r.metrics.RecordSocketEvent(req.Event, result, duration)
		if isServerError(res.err) {
			r.logger.Error("socket request failed", append(fields, zap.Error(res.err))...)
		} else {
			r.logger.Info("socket request rejected", append(fields, zap.Error(res.err))...)
		}
		return encodeFailure(req.Event, req.RequestID, res.err)
	}

	raw, err := encodeSuccess(req.Event, req.RequestID, res.data)
	if err != nil {
		r.metrics.RecordSocketEvent(req.Event, observability.OutcomeError, duration)
		r.logger.Error("encode socket response", append(fields, zap.Error(err))...)
		return encodeFailure(req.Event, req.RequestID, apperrors.NewInternalError(err))
	}
	r.metrics.RecordSocketEvent(req.Event, observability.OutcomeOK, duration)
	r.logger.Debug("socket request served", fields...)
	return raw
}
