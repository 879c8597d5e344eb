// main.go
package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tidewave/internal/app"
	"tidewave/internal/config"
	"tidewave/internal/util"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	showHelp = flag.Bool("h", false, "Show help")
	version  = flag.Bool("version", false, "Show version")
)

// appVersion is set at build time via -ldflags "-X main.appVersion=x.y.z"
var appVersion = "dev"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Tidewave v%s\n", appVersion)
		return
	}

	if *showHelp {
		showUsage()
		return
	}

	args := flag.Args()

	// No arguments - run desktop UI
	if len(args) == 0 {
		runDesktopApp()
		return
	}

	switch args[0] {
	case "attach":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Error: attach command requires a config file path")
			fmt.Fprintln(os.Stderr, "Usage: tidewave attach <config.json>")
			os.Exit(1)
		}
		runCLIAttach(args[1])

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", args[0])
		fmt.Fprintln(os.Stderr)
		showUsage()
		os.Exit(1)
	}
}

func runDesktopApp() {
	app := NewApp()

	err := wails.Run(&options.App{
		Title:  "Tidewave",
		Width:  1200,
		Height: 800,

		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind:       []any{app},
	})
	if err != nil {
		log.Fatal(err)
	}
}

func runCLIAttach(cfgArg string) {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("Cannot determine working directory: %v", err)
	}
	absPath := util.ResolvePath(cwd, cfgArg)

	cfg, _, err := config.Ensure(absPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	printAttachBanner(absPath, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Println("\nShutting down gracefully...")
		cancel()
	}()

	if err := app.Run(ctx, app.Options{
		CfgPath: absPath,
		Cfg:     cfg,
	}); err != nil {
		log.Fatalf("Attach failed: %v", err)
	}
}

func showUsage() {
	fmt.Println("Tidewave - control surface for a remote playback daemon")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tidewave                   Run desktop application (default)")
	fmt.Println("  tidewave attach <config>   Attach to a daemon without a GUI")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  attach <config>")
	fmt.Println("        Connect to the daemon named in the config file and log")
	fmt.Println("        playback, queue and auth state transitions to the terminal")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h        Show this help message")
	fmt.Println("  -version  Show version information")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Run desktop app")
	fmt.Println("  tidewave")
	fmt.Println()
	fmt.Println("  # Headless attach")
	fmt.Println("  tidewave attach ./data/tidewave.json")
}

func printAttachBanner(cfgPath string, cfg config.Config) {
	fmt.Println("╔════════════════════════════════════════════════════════╗")
	fmt.Println("║                  Tidewave Attach Mode                  ║")
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Config File: %s\n", cfgPath)
	fmt.Printf("Daemon URL:  %s\n", cfg.Daemon.URL)
	fmt.Println()
	fmt.Println("Attaching... (Press Ctrl+C to stop)")
	fmt.Println("────────────────────────────────────────────────────────")
	fmt.Println()
}
