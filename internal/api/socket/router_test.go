package socket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/observability"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

type decodedResponse struct {
	Event     string `json:"event"`
	RequestID string `json:"requestId"`
	Payload   Result `json:"payload"`
}

func decode(t *testing.T, raw []byte) decodedResponse {
	t.Helper()
	var res decodedResponse
	require.NoError(t, json.Unmarshal(raw, &res))
	return res
}

var hrUser = &domain.ConsoleUser{ID: "u-hr", Name: "Priya", Role: domain.RoleHR, Active: true}
var viewer = &domain.ConsoleUser{ID: "u-view", Name: "Sam", Role: domain.RoleViewer, Active: true}

func TestRouter_Success(t *testing.T) {
	r := NewRouter(time.Second, nil, nil)
	r.Handle("hr/departments/get", func(_ context.Context, req *Request) (any, error) {
		var in struct {
			Status string `json:"status"`
		}
		require.NoError(t, req.Decode(&in))
		return []string{"Engineering", in.Status}, nil
	})

	res := decode(t, r.Dispatch(context.Background(), &Request{
		Event:     "hr/departments/get",
		RequestID: "r1",
		Payload:   json.RawMessage(`{"status":"Active"}`),
		User:      viewer,
	}))
	require.Equal(t, "hr/departments/get-response", res.Event)
	require.Equal(t, "r1", res.RequestID)
	require.True(t, res.Payload.Done)
	require.Equal(t, []any{"Engineering", "Active"}, res.Payload.Data)
}

func TestRouter_UnknownEvent(t *testing.T) {
	r := NewRouter(time.Second, nil, nil)
	res := decode(t, r.Dispatch(context.Background(), &Request{Event: "hr/nothing", RequestID: "r2", User: hrUser}))
	require.Equal(t, "hr/nothing-response", res.Event)
	require.False(t, res.Payload.Done)
	require.Equal(t, "unknown event hr/nothing", res.Payload.Error)
}

func TestRouter_RoleRestriction(t *testing.T) {
	r := NewRouter(time.Second, nil, nil)
	called := false
	r.Handle("hr/departments/add", func(context.Context, *Request) (any, error) {
		called = true
		return nil, nil
	}, WithRoles(domain.RoleAdmin, domain.RoleHR))

	res := decode(t, r.Dispatch(context.Background(), &Request{Event: "hr/departments/add", User: viewer}))
	require.False(t, res.Payload.Done)
	require.Equal(t, "insufficient role", res.Payload.Error)
	require.False(t, called)

	res = decode(t, r.Dispatch(context.Background(), &Request{Event: "hr/departments/add", User: hrUser}))
	require.True(t, res.Payload.Done)
	require.True(t, called)
}

func TestRouter_ValidationFields(t *testing.T) {
	r := NewRouter(time.Second, nil, nil)
	r.Handle("hr/departments/add", func(context.Context, *Request) (any, error) {
		return nil, apperrors.NewValidationError("Department Name is required", map[string]any{
			"departmentName": "Department Name is required",
		})
	})

	res := decode(t, r.Dispatch(context.Background(), &Request{Event: "hr/departments/add", User: hrUser}))
	require.False(t, res.Payload.Done)
	require.Equal(t, "Department Name is required", res.Payload.Error)
	require.Equal(t, map[string]string{"departmentName": "Department Name is required"}, res.Payload.Fields)
}

func TestRouter_Timeout(t *testing.T) {
	metrics := observability.NewMetrics("sock")
	r := NewRouter(20*time.Millisecond, nil, metrics)
	r.Handle("task:getAllData", func(ctx context.Context, _ *Request) (any, error) {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return "late", nil
	})

	res := decode(t, r.Dispatch(context.Background(), &Request{Event: "task:getAllData", RequestID: "r3", User: hrUser}))
	require.False(t, res.Payload.Done)
	require.Equal(t, "request timed out", res.Payload.Error)

	count, err := testutil.GatherAndCount(metrics.Registry, "sock_socket_events_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRouter_ListLoadTimeoutAppliesOnlyToListRoutes(t *testing.T) {
	r := NewRouter(time.Second, nil, nil)
	r.SetListLoadTimeout(20 * time.Millisecond)
	deadlines := map[string]time.Duration{}
	record := func(ctx context.Context, req *Request) (any, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		deadlines[req.Event] = time.Until(deadline)
		return nil, nil
	}
	r.Handle("hr/departments/get", record, ListLoad())
	r.Handle("hrm/employees/get-details", record)

	for _, event := range []string{"hr/departments/get", "hrm/employees/get-details"} {
		res := decode(t, r.Dispatch(context.Background(), &Request{Event: event, User: hrUser}))
		require.True(t, res.Payload.Done, event)
	}
	require.LessOrEqual(t, deadlines["hr/departments/get"], 20*time.Millisecond)
	require.Greater(t, deadlines["hrm/employees/get-details"], 500*time.Millisecond)
}

func TestRouter_PanicRecovered(t *testing.T) {
	r := NewRouter(time.Second, nil, nil)
	r.Handle("hr/policy/get", func(context.Context, *Request) (any, error) {
		panic("boom")
	})

	res := decode(t, r.Dispatch(context.Background(), &Request{Event: "hr/policy/get", User: hrUser}))
	require.False(t, res.Payload.Done)
	require.Equal(t, "internal server error", res.Payload.Error)
}

func TestRouter_InvalidPayload(t *testing.T) {
	r := NewRouter(time.Second, nil, nil)
	r.Handle("hr/policy/add", func(_ context.Context, req *Request) (any, error) {
		var in struct {
			Name string `json:"policyName"`
		}
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return in.Name, nil
	})

	res := decode(t, r.Dispatch(context.Background(), &Request{
		Event:   "hr/policy/add",
		Payload: json.RawMessage(`{"policyName": 7}`),
		User:    hrUser,
	}))
	require.False(t, res.Payload.Done)
	require.Equal(t, "invalid payload", res.Payload.Error)
}

func TestRouter_DuplicateHandlerPanics(t *testing.T) {
	r := NewRouter(0, nil, nil)
	h := func(context.Context, *Request) (any, error) { return nil, nil }
	r.Handle("project:getAll", h)
	require.Panics(t, func() { r.Handle("project:getAll", h) })
	require.Equal(t, []string{"project:getAll"}, r.Events())
}
