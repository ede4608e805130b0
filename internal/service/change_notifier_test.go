package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
)

type capturedNotice struct {
	event   string
	payload any
}

type captureBroadcaster struct {
	notices []capturedNotice
	ctxs    []context.Context
}

func (c *captureBroadcaster) Broadcast(ctx context.Context, event string, payload any) error {
	c.notices = append(c.notices, capturedNotice{event: event, payload: payload})
	c.ctxs = append(c.ctxs, ctx)
	return nil
}

func TestChangeNotifierBroadcastsDesignationChange(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	b := &captureBroadcaster{}
	NewChangeNotifier(dispatcher, b, nil).RegisterHandlers()

	org := newFakeOrg()
	dept := org.addDepartment("Quality", domain.StatusActive)
	svc := NewDesignationService(DesignationDependencies{
		DesignationRepo: fakeDesignations{org},
		DepartmentRepo:  fakeDepartments{org},
		Dispatcher:      dispatcher,
	})

	desig, err := svc.Add(context.Background(), testActor, DesignationInput{Name: "QA Lead", DepartmentID: dept.ID})
	require.NoError(t, err)

	require.Len(t, b.notices, 1)
	require.Equal(t, "designation/changed", b.notices[0].event)
	notice := b.notices[0].payload.(ChangeNotice)
	require.Equal(t, desig.ID, notice.ID)
	require.Equal(t, events.ActionCreated, notice.Action)
	require.Equal(t, "Priya", notice.Actor.Name)
}

func TestNoticeNamesCoverEveryEvent(t *testing.T) {
	for _, et := range events.AllTypes {
		_, ok := NoticeName(et)
		require.True(t, ok, et)
	}
}

func TestChangeNotifierOutlivesRequestButStaysBounded(t *testing.T) {
	b := &captureBroadcaster{}
	n := NewChangeNotifier(nil, b, nil)

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := n.handle(reqCtx, events.Event{Type: events.EventTaskChanged, EntityID: "task-1", Action: events.ActionUpdated})
	require.NoError(t, err)

	require.Len(t, b.ctxs, 1)
	deadline, ok := b.ctxs[0].Deadline()
	require.True(t, ok)
	require.WithinDuration(t, start.Add(broadcastTimeout), deadline, time.Second)
	require.Equal(t, "task/changed", b.notices[0].event)
}
