package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewave/internal/bridge"
	"tidewave/internal/proto"
)

type fakeClient struct {
	loggedIn    bool
	loggedInErr error
	code        string
	loginErr    error

	statusCalls int
	loginCalls  int
}

func (f *fakeClient) IsLoggedIn(context.Context) (bool, error) {
	f.statusCalls++
	return f.loggedIn, f.loggedInErr
}

func (f *fakeClient) Login(context.Context) (string, error) {
	f.loginCalls++
	return f.code, f.loginErr
}

func TestInitialState(t *testing.T) {
	f := New(&fakeClient{}, nil, nil)
	assert.Equal(t, Status{State: StateUnknown}, f.Status())
	assert.Empty(t, f.LoginLink())
}

func TestCheckAlreadyLoggedIn(t *testing.T) {
	client := &fakeClient{loggedIn: true}
	var transitions []Status
	f := New(client, func(s Status) { transitions = append(transitions, s) }, nil)

	require.NoError(t, f.Check(context.Background()))

	assert.Equal(t, []Status{
		{State: StateChecking},
		{State: StateAuthenticated},
	}, transitions)
	assert.Equal(t, 0, client.loginCalls, "login must not start for an existing session")
}

func TestCheckStartsLoginFlow(t *testing.T) {
	client := &fakeClient{loggedIn: false, code: "ABC-123"}
	var transitions []Status
	f := New(client, func(s Status) { transitions = append(transitions, s) }, nil)

	require.NoError(t, f.Check(context.Background()))

	assert.Equal(t, []Status{
		{State: StateChecking},
		{State: StateAwaitingUser, Code: "ABC-123"},
	}, transitions)
	assert.Equal(t, "https://link.tidal.com/ABC-123", f.LoginLink())
}

func TestLoggedInEventCompletesFlow(t *testing.T) {
	client := &fakeClient{loggedIn: false, code: "ABC-123"}
	invalidated := 0
	f := New(client, nil, func() { invalidated++ })

	b := bridge.New()
	release := f.Attach(b)
	defer release()

	require.NoError(t, f.Check(context.Background()))
	require.Equal(t, StateAwaitingUser, f.Status().State)

	b.PublishLocal(proto.ChanLoggedIn, nil)

	assert.Equal(t, Status{State: StateAuthenticated}, f.Status())
	assert.Equal(t, 1, invalidated, "completion must invalidate auth-dependent state")
	assert.Empty(t, f.LoginLink(), "no code is pending once authenticated")
}

func TestAuthenticatedIsTerminal(t *testing.T) {
	client := &fakeClient{loggedIn: true}
	f := New(client, nil, nil)

	require.NoError(t, f.Check(context.Background()))
	require.Equal(t, StateAuthenticated, f.Status().State)

	// Further checks are no-ops: no queries, no state changes.
	require.NoError(t, f.Check(context.Background()))
	assert.Equal(t, 1, client.statusCalls)
	assert.Equal(t, StateAuthenticated, f.Status().State)
}

func TestStatusQueryFailureIsReEnterable(t *testing.T) {
	client := &fakeClient{loggedInErr: errors.New("daemon unavailable")}
	f := New(client, nil, nil)

	err := f.Check(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateChecking, f.Status().State)

	// The failure cleared: a second Check runs the flow to completion.
	client.loggedInErr = nil
	client.loggedIn = true
	require.NoError(t, f.Check(context.Background()))
	assert.Equal(t, StateAuthenticated, f.Status().State)
}

func TestLoginInitiationFailureIsReEnterable(t *testing.T) {
	client := &fakeClient{loginErr: errors.New("device flow rejected")}
	f := New(client, nil, nil)

	err := f.Check(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateChecking, f.Status().State)
	assert.Empty(t, f.LoginLink())

	client.loginErr = nil
	client.code = "XYZ-789"
	require.NoError(t, f.Check(context.Background()))
	assert.Equal(t, Status{State: StateAwaitingUser, Code: "XYZ-789"}, f.Status())
}

// blockingLoginClient parks Login until released, so a test can interleave
// events with an in-flight command.
type blockingLoginClient struct {
	started chan struct{}
	release chan string
}

func (c *blockingLoginClient) IsLoggedIn(context.Context) (bool, error) { return false, nil }

func (c *blockingLoginClient) Login(context.Context) (string, error) {
	close(c.started)
	return <-c.release, nil
}

func TestLoggedInEventDuringLoginStaysTerminal(t *testing.T) {
	// Command resolutions and events carry no ordering relative to each
	// other: the daemon may complete the session while the login command's
	// reply is still in flight. The late reply must not pull the machine
	// back out of authenticated.
	client := &blockingLoginClient{
		started: make(chan struct{}),
		release: make(chan string),
	}
	f := New(client, nil, nil)

	b := bridge.New()
	releaseSub := f.Attach(b)
	defer releaseSub()

	done := make(chan error, 1)
	go func() { done <- f.Check(context.Background()) }()

	<-client.started
	b.PublishLocal(proto.ChanLoggedIn, nil)
	require.Equal(t, StateAuthenticated, f.Status().State)

	client.release <- "LATE-123"
	require.NoError(t, <-done)

	assert.Equal(t, Status{State: StateAuthenticated}, f.Status())
	assert.Empty(t, f.LoginLink(), "the superseded login code must not surface")
}

func TestLoggedInEventWithoutCheck(t *testing.T) {
	// The daemon may report a session established out of band. The event
	// alone must complete the machine.
	f := New(&fakeClient{}, nil, nil)
	b := bridge.New()
	release := f.Attach(b)
	defer release()

	b.PublishLocal(proto.ChanLoggedIn, nil)
	assert.Equal(t, StateAuthenticated, f.Status().State)
}
