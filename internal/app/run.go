package app

import (
	"context"
	"log"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"tidewave/internal/auth"
	"tidewave/internal/config"
	"tidewave/internal/lyrics"
	"tidewave/internal/util"
)

type Options struct {
	CfgPath string
	Cfg     config.Config
}

// Run attaches to the daemon without a GUI and logs state transitions
// until the context is cancelled. It is the CLI twin of the desktop app.
func Run(ctx context.Context, opt Options) error {
	cfg := opt.Cfg
	ApplyLogLevel(cfg.Log.Level)

	core := NewCore(Callbacks{
		OnLyrics: func(s lyrics.Status) {
			log.Printf("APP: lyrics %s (track %s)", s.Phase, s.TrackID)
		},
		OnAuth: func(s auth.Status) {
			log.Printf("APP: auth state: %s", s.State)
		},
		OnAuthInvalidated: func() {
			log.Printf("APP: auth-dependent state invalidated")
		},
	})
	defer core.Close()

	timeout := time.Duration(cfg.Daemon.DialTimeoutSec) * time.Second
	if err := core.Connect(ctx, cfg.Daemon.URL, timeout); err != nil {
		// Degraded mode: subscriptions stay silent, commands fail.
		log.Printf("APP: daemon unreachable, attaching anyway: %v", err)
	}

	if err := core.Auth.Check(ctx); err != nil {
		log.Printf("APP: auth check failed: %v", err)
	}
	if link := core.Auth.LoginLink(); link != "" {
		log.Printf("APP: visit %s to log in", link)
		if err := util.OpenURL(link); err != nil {
			log.Printf("APP: could not open a browser, open the link manually: %v", err)
		}
	}

	// Re-apply the log level when the config file is edited.
	stopWatch, err := config.Watch(opt.CfgPath, func(c config.Config) {
		ApplyLogLevel(c.Log.Level)
		log.Printf("APP: config reloaded")
	})
	if err != nil {
		log.Printf("APP: config watch unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	<-ctx.Done()
	return nil
}

// ApplyLogLevel sets the bridge logger's level. An empty level keeps the
// current one.
func ApplyLogLevel(level string) {
	if level == "" {
		return
	}
	if err := logging.SetLogLevel("bridge", level); err != nil {
		log.Printf("APP: invalid log level %q: %v", level, err)
	}
}
