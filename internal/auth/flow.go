// Package auth tracks whether the daemon session is usable. The flow is
// event-driven: a status query, then a login command whose user code the
// frontend shows, then a loggedIn event that completes the machine and
// invalidates everything that depended on authentication.
package auth

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"tidewave/internal/bridge"
	"tidewave/internal/proto"
)

// LoginLinkBase is the URL prefix the user code is appended to.
const LoginLinkBase = "https://link.tidal.com/"

// State of the flow.
type State string

const (
	StateUnknown       State = "unknown"       // before the first status query
	StateChecking      State = "checking"      // query or login in flight; re-enterable on failure
	StateAwaitingUser  State = "awaitingUser"  // user must visit the login link
	StateAuthenticated State = "authenticated" // terminal; protected commands are meaningful
)

// Status is a snapshot of the flow, shaped for the frontend.
type Status struct {
	State State  `json:"state"`
	Code  string `json:"code,omitempty"` // login code, set in awaitingUser
}

// Client is the slice of the command surface the flow needs.
type Client interface {
	IsLoggedIn(ctx context.Context) (bool, error)
	Login(ctx context.Context) (string, error)
}

type Flow struct {
	mu     sync.Mutex
	client Client
	state  State
	code   string

	onChange   func(Status)
	invalidate func()
}

// New creates a flow in StateUnknown. onChange fires after every transition;
// invalidate fires when a loggedIn event lands, so auth-dependent state
// refreshes together with the transition. Either may be nil.
func New(client Client, onChange func(Status), invalidate func()) *Flow {
	return &Flow{
		client:     client,
		state:      StateUnknown,
		onChange:   onChange,
		invalidate: invalidate,
	}
}

// Attach subscribes the flow to the loggedIn channel and returns the
// disposer.
func (f *Flow) Attach(b *bridge.Bridge) func() {
	return b.Subscribe(proto.ChanLoggedIn, func(json.RawMessage) {
		f.completeLogin()
	})
}

// Check runs the status query and, when the session is absent, starts the
// login flow. On command failure the machine stays in StateChecking and
// Check may be called again; no retry happens on its own.
func (f *Flow) Check(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateAuthenticated {
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	f.setState(StateChecking, "")

	loggedIn, err := f.client.IsLoggedIn(ctx)
	if err != nil {
		log.Printf("AUTH: status query failed: %v", err)
		return err
	}
	if loggedIn {
		f.setState(StateAuthenticated, "")
		return nil
	}

	code, err := f.client.Login(ctx)
	if err != nil {
		log.Printf("AUTH: login initiation failed: %v", err)
		return err
	}
	f.setState(StateAwaitingUser, code)
	return nil
}

// completeLogin handles the loggedIn event.
func (f *Flow) completeLogin() {
	f.setState(StateAuthenticated, "")
	if f.invalidate != nil {
		f.invalidate()
	}
}

// Status returns the current snapshot.
func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{State: f.state, Code: f.code}
}

// LoginLink returns the URL the user visits to complete login, or "" when
// no code is pending.
func (f *Flow) LoginLink() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.code == "" {
		return ""
	}
	return LoginLinkBase + f.code
}

func (f *Flow) setState(s State, code string) {
	f.mu.Lock()
	// Authenticated is terminal. A loggedIn event may land while a status
	// query or login command is still in flight; the late reply must not
	// regress the machine.
	if f.state == StateAuthenticated && s != StateAuthenticated {
		f.mu.Unlock()
		return
	}
	f.state = s
	f.code = code
	status := Status{State: s, Code: code}
	f.mu.Unlock()

	if f.onChange != nil {
		f.onChange(status)
	}
}
