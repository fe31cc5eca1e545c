package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rinser/feedtail/domain"
	"github.com/rinser/feedtail/infra/config"
	"github.com/rinser/feedtail/infra/feedhttp"
	"github.com/rinser/feedtail/infra/logging"
	"github.com/rinser/feedtail/infra/stream"
	"github.com/rinser/feedtail/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type rootFlags struct {
	configPath string
	port       int
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
	cmd := &cobra.Command{
		Use:   "feedtail [page-url]",
		Short: "Show a user's publication feed and follow it live",
		Long: "feedtail reads userId from the page URL, renders the user's feed snapshot\n" +
			"from http(s)://<host>:<port>/feed/<userId> and appends new publications\n" +
			"from ws(s)://<host>:<port>/<userId>/ws as they arrive.\n\n" +
			"Without a page URL the last one used is reopened.",
		Example:       "  feedtail 'http://localhost/index.html?userId=42'",
		Args:          cobra.MaximumNArgs(1),
		Version:       v,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("feedtail %s\ncommit: %s\nbuilt: %s\n", v, c, d))

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "config file path (default: <user config dir>/feedtail/config.yaml)")
	f.IntVar(&flags.port, "port", domain.DefaultPort, "feed server port")
	f.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	f.StringVar(&flags.logFile, "log-file", "", "log file path")

	return cmd
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags rootFlags) {
	if cmd.Flags().Changed("port") {
		cfg.Port = flags.port
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = flags.logFile
	}
}

// resolvePageURL prefers the argument, then the page remembered from the last run.
func resolvePageURL(args []string, st config.UIState) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return st.LastPageURL
}

func run(cmd *cobra.Command, args []string, flags rootFlags) error {
	// 1. Load config from defaults, file and environment.
	cfg, cfgPath, err := config.Load(nil, flags.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlags(cmd, &cfg, flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, logCloser, err := logging.Open(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logCloser.Close()
	logger.Debug().Str("path", cfgPath).Int("port", cfg.Port).Msg("config loaded")

	// 2. Resolve the page.
	st, err := config.LoadUIState(cfg.StatePath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.StatePath).Msg("ignoring unreadable ui state")
	}
	pageURL := resolvePageURL(args, st)
	page, pageErr := domain.ParsePage(pageURL)
	if pageErr != nil {
		logger.Warn().Err(pageErr).Str("page", pageURL).Msg("page rejected")
	} else if err := config.SaveUIState(cfg.StatePath, config.UIState{LastPageURL: pageURL}); err != nil {
		logger.Warn().Err(err).Msg("failed to save ui state")
	}

	// 3. Wire root TUI model.
	rootModel := tui.NewApp(buildDeps(cfg, page, pageErr, logger))

	// 4. Run.
	p := tea.NewProgram(rootModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// buildDeps creates the network services. A rejected page gets none.
func buildDeps(cfg config.Config, page domain.Page, pageErr error, logger *zerolog.Logger) tui.Deps {
	deps := tui.Deps{Page: page, PageErr: pageErr, Log: logger}
	if pageErr != nil {
		return deps
	}

	v, _, _ := resolvedRuntimeVersionInfo(version, commit, date)
	httpClient := feedhttp.NewClient(page.BaseURL(cfg.Port), "feedtail/"+v, cfg.RequestTimeout)
	deps.Snapshot = feedhttp.NewSnapshotService(httpClient, logger)
	deps.Stream = stream.NewDialer(page.StreamBaseURL(cfg.Port), cfg.ReadLimit, logger)
	return deps
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "feedtail: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
