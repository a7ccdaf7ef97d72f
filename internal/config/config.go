package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bubblechat/bubblechat/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envSocketPath = "BUBBLECHAT_SOCKET"
	envWidth      = "BUBBLECHAT_WIDTH"
	envHeight     = "BUBBLECHAT_HEIGHT"
	envMargin     = "BUBBLECHAT_MARGIN"
	envHotkey     = "BUBBLECHAT_HOTKEY"
	envAssetsDir  = "BUBBLECHAT_ASSETS_DIR"
	envAssetsAddr = "BUBBLECHAT_ASSETS_ADDR"
	envTrace      = "BUBBLECHAT_TRACE"
	envLogFile    = "BUBBLECHAT_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("bubblechat", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	socket := fs.String("socket", envOrDefault(env, envSocketPath, ""), "path to the control socket (overrides the runtime-dir default)")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "bubble width in cells (0 uses the default)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "bubble height in rows (0 uses the default)")
	margin := fs.Int("margin", envOrInt(env, envMargin, -1), "margin between the bubble and the work-area edge (-1 uses the default)")
	hotkey := fs.String("hotkey", envOrDefault(env, envHotkey, ""), "global tmux key that toggles the bubble (empty uses the default)")
	assetsDir := fs.String("assets-dir", envOrDefault(env, envAssetsDir, ""), "serve widget assets from this directory (empty disables the asset server)")
	assetsAddr := fs.String("assets-addr", envOrDefault(env, envAssetsAddr, ""), "listen address for the asset server")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	command := ""
	var commandArgs []string
	if rest := fs.Args(); len(rest) > 0 {
		command = rest[0]
		commandArgs = append([]string(nil), rest[1:]...)
	}

	cfg := Config{
		App: app.Config{
			Command:    command,
			Args:       commandArgs,
			SocketPath: *socket,
			Width:      *width,
			Height:     *height,
			Margin:     *margin,
			Hotkey:     *hotkey,
			AssetsDir:  *assetsDir,
			AssetsAddr: *assetsAddr,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"socket":      *socket,
			"width":       strconv.Itoa(*width),
			"height":      strconv.Itoa(*height),
			"margin":      strconv.Itoa(*margin),
			"hotkey":      *hotkey,
			"assets-dir":  *assetsDir,
			"assets-addr": *assetsAddr,
			"trace":       strconv.FormatBool(*trace),
			"logFile":     *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	switch cfg.App.Command {
	case "", app.CommandWidget, app.CommandShow, app.CommandHide,
		app.CommandToggle, app.CommandReload, app.CommandQuit, app.CommandMenu:
		return nil
	default:
		return fmt.Errorf("unknown command %q", cfg.App.Command)
	}
}
