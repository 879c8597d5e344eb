// Package app assembles the synchronization core: bridge, playback mirror,
// command surface, lyrics controller and auth flow. The Wails launcher and
// the headless attach mode both run the same Core.
package app

import (
	"context"
	"time"

	"tidewave/internal/auth"
	"tidewave/internal/bridge"
	"tidewave/internal/command"
	"tidewave/internal/lyrics"
	"tidewave/internal/player"
)

// Callbacks let the embedding layer observe derived-state transitions.
// Any of them may be nil.
type Callbacks struct {
	OnLyrics          func(lyrics.Status)
	OnAuth            func(auth.Status)
	OnAuthInvalidated func()
}

// Core wires the components around one bridge. Subscriptions are acquired
// at construction and released by Close; events only start flowing once
// Connect succeeds.
type Core struct {
	Bridge   *bridge.Bridge
	Store    *player.Store
	Commands *command.Dispatcher
	Lyrics   *lyrics.Controller
	Auth     *auth.Flow

	release []func()
}

func NewCore(cb Callbacks) *Core {
	b := bridge.New()
	d := command.NewDispatcher(b)

	c := &Core{
		Bridge:   b,
		Store:    player.NewStore(),
		Commands: d,
	}

	c.Lyrics = lyrics.New(lyricsFetcher(d), cb.OnLyrics)
	c.Auth = auth.New(authClient{d}, cb.OnAuth, cb.OnAuthInvalidated)

	c.release = append(c.release,
		c.Store.Attach(b),
		c.Lyrics.Attach(b),
		c.Auth.Attach(b),
	)
	return c
}

// Connect dials the daemon. A failed dial leaves the core in its degraded
// mode: subscriptions stay silent and commands resolve to failures.
func (c *Core) Connect(ctx context.Context, url string, timeout time.Duration) error {
	return c.Bridge.Dial(ctx, url, timeout)
}

// Close releases every subscription and tears down the bridge.
func (c *Core) Close() {
	for _, release := range c.release {
		release()
	}
	c.release = nil
	_ = c.Bridge.Close()
}

// lyricsFetcher adapts the dispatcher to the controller's fetch signature.
func lyricsFetcher(d *command.Dispatcher) lyrics.FetchFunc {
	return func(ctx context.Context, trackID string) (string, error) {
		return d.Lyrics(ctx, trackID).Get()
	}
}

// authClient adapts the dispatcher's envelopes to the flow's plain-error
// client interface.
type authClient struct {
	d *command.Dispatcher
}

func (a authClient) IsLoggedIn(ctx context.Context) (bool, error) {
	return a.d.IsLoggedIn(ctx).Get()
}

func (a authClient) Login(ctx context.Context) (string, error) {
	return a.d.Login(ctx).Get()
}
