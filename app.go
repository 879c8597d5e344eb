// app.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"tidewave/internal/app"
	"tidewave/internal/auth"
	"tidewave/internal/config"
	"tidewave/internal/lyrics"
	"tidewave/internal/player"
	"tidewave/internal/proto"
	"tidewave/internal/result"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

const cfgPath = "data/tidewave.json"

// Frontend-only channels, alongside the daemon channels re-emitted verbatim.
const (
	lyricsChannel         = "lyricsState"
	authChannel           = "authState"
	authInvalidateChannel = "authInvalidated"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	core *app.Core

	uiMu      sync.Mutex
	cfg       config.Config
	stopWatch func()
}

func NewApp() *App { return &App{} }

func (a *App) startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	cfg, created, err := config.Ensure(cfgPath)
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
		cfg = config.Default()
	} else if created {
		log.Printf("config: created %s", cfgPath)
	}
	a.cfg = cfg
	app.ApplyLogLevel(cfg.Log.Level)

	a.core = app.NewCore(app.Callbacks{
		OnLyrics: func(s lyrics.Status) {
			runtime.EventsEmit(a.ctx, lyricsChannel, s)
		},
		OnAuth: func(s auth.Status) {
			runtime.EventsEmit(a.ctx, authChannel, s)
		},
		OnAuthInvalidated: func() {
			runtime.EventsEmit(a.ctx, authInvalidateChannel, nil)
		},
	})

	// Re-emit every daemon event to the frontend on its own channel name.
	for _, channel := range []string{
		proto.ChanCurrentTrack,
		proto.ChanPlaybackState,
		proto.ChanPlaybackPosition,
		proto.ChanUpdatedQueue,
		proto.ChanLoggedIn,
	} {
		channel := channel
		a.core.Bridge.Subscribe(channel, func(payload json.RawMessage) {
			var v any
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &v); err != nil {
					log.Printf("emit %s: bad payload: %v", channel, err)
					return
				}
			}
			runtime.EventsEmit(a.ctx, channel, v)
		})
	}

	timeout := time.Duration(cfg.Daemon.DialTimeoutSec) * time.Second
	if err := a.core.Connect(a.ctx, cfg.Daemon.URL, timeout); err != nil {
		// Degraded mode: the UI renders empty states until the daemon is up.
		log.Printf("daemon unreachable: %v", err)
	}

	// The auth check chains a login command, so keep it off the startup path.
	go func() {
		if err := a.core.Auth.Check(a.ctx); err != nil {
			log.Printf("auth check: %v", err)
		}
	}()

	stop, err := config.Watch(cfgPath, a.onConfigReload)
	if err != nil {
		log.Printf("config watch: %v", err)
	} else {
		a.stopWatch = stop
	}
}

func (a *App) shutdown(ctx context.Context) {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.core != nil {
		a.core.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) onConfigReload(cfg config.Config) {
	a.uiMu.Lock()
	a.cfg = cfg
	a.uiMu.Unlock()

	app.ApplyLogLevel(cfg.Log.Level)
	runtime.EventsEmit(a.ctx, "themeChanged", cfg.UI.Theme)
}

// -------------------------
// Auth API
// -------------------------

func (a *App) IsLoggedIn() result.Result[bool] {
	return a.core.Commands.IsLoggedIn(a.ctx)
}

func (a *App) Login() result.Result[string] {
	return a.core.Commands.Login(a.ctx)
}

func (a *App) AuthStatus() auth.Status {
	return a.core.Auth.Status()
}

// CheckAuth drives the flow; safe to call again after a failure.
func (a *App) CheckAuth() result.Result[auth.Status] {
	if err := a.core.Auth.Check(a.ctx); err != nil {
		return result.Err[auth.Status](err)
	}
	return result.Ok(a.core.Auth.Status())
}

// OpenLoginLink opens the pending login link in the default browser.
func (a *App) OpenLoginLink() {
	link := a.core.Auth.LoginLink()
	if link == "" {
		return
	}
	runtime.BrowserOpenURL(a.ctx, link)
}

// -------------------------
// Playback API
// -------------------------

func (a *App) PlaybackState() player.Snapshot {
	return a.core.Store.Snapshot()
}

// RecentTracks returns the recently-played list, oldest first.
func (a *App) RecentTracks() []proto.Track {
	return a.core.Store.History()
}

func (a *App) Play() result.Result[result.Unit] {
	return a.core.Commands.Play(a.ctx)
}

func (a *App) Pause() result.Result[result.Unit] {
	return a.core.Commands.Pause(a.ctx)
}

func (a *App) Resume() result.Result[result.Unit] {
	return a.core.Commands.Resume(a.ctx)
}

func (a *App) StopTrack() result.Result[result.Unit] {
	return a.core.Commands.StopTrack(a.ctx)
}

func (a *App) SkipNext() result.Result[result.Unit] {
	return a.core.Commands.SkipNext(a.ctx)
}

func (a *App) SkipPrevious() result.Result[result.Unit] {
	return a.core.Commands.SkipPrevious(a.ctx)
}

func (a *App) QueueTrack(trackID string) result.Result[result.Unit] {
	return a.core.Commands.QueueTrack(a.ctx, trackID)
}

func (a *App) PlayTrack(trackID string) result.Result[result.Unit] {
	return a.core.Commands.PlayTrack(a.ctx, trackID)
}

func (a *App) QueueAlbum(albumID string) result.Result[result.Unit] {
	return a.core.Commands.QueueAlbum(a.ctx, albumID)
}

// -------------------------
// Library API
// -------------------------

func (a *App) FavouriteAlbums() result.Result[[]proto.FavouriteAlbum] {
	return a.core.Commands.FavouriteAlbums(a.ctx)
}

func (a *App) AlbumTracks(albumID string) result.Result[[]proto.Track] {
	return a.core.Commands.AlbumTracks(a.ctx, albumID)
}

func (a *App) Lyrics(trackID string) result.Result[string] {
	return a.core.Commands.Lyrics(a.ctx, trackID)
}

func (a *App) LyricsStatus() lyrics.Status {
	return a.core.Lyrics.Status()
}

// -------------------------
// Devices API
// -------------------------

func (a *App) Devices() result.Result[[]proto.Device] {
	return a.core.Commands.Devices(a.ctx)
}

func (a *App) SetOutputDevice(deviceID string) result.Result[result.Unit] {
	return a.core.Commands.SetOutputDevice(a.ctx, deviceID)
}

// -------------------------
// Theme API for Wails frontend
// -------------------------

func (a *App) GetTheme() string {
	a.uiMu.Lock()
	defer a.uiMu.Unlock()
	return normalizeTheme(a.cfg.UI.Theme)
}

func (a *App) SetTheme(theme string) error {
	a.uiMu.Lock()
	defer a.uiMu.Unlock()

	a.cfg.UI.Theme = normalizeTheme(theme)
	return config.Save(cfgPath, a.cfg)
}

func normalizeTheme(t string) string {
	if t == "light" || t == "dark" {
		return t
	}
	return "dark"
}
