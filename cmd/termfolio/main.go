// Package main provides the CLI entrypoint for termfolio.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/termfolio/internal/config"
	"github.com/verte-zerg/termfolio/internal/terminal"
	"github.com/verte-zerg/termfolio/internal/tui"
)

const (
	defaultAddr       = "127.0.0.1:8787"
	defaultTimeoutSec = 30
	defaultMaxTokens  = 512
	defaultTemp       = 0.3
)

var (
	contentPath       string
	historySize       int
	themeFlag         string
	chatProvider      string
	chatEndpoint      string
	chatModel         string
	chatBaseURL       string
	chatMaxTokens     int
	chatTemperature   float64
	chatTimeoutSec    int
	analyticsEnabled  bool
	analyticsEndpoint string
	shieldRules       string
	logLevel          string
	logFile           string
	dbPath            string

	serveAddr    string
	historyClear bool
	chatAPIKey   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "termfolio",
		Short:         "Terminal portfolio with an AI assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTerminalCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&contentPath, "content", "", "portfolio YAML file (default: embedded)")
	flags.IntVar(&historySize, "history-size", terminal.DefaultRecallLimit, "number of commands kept for recall")
	flags.StringVar(&themeFlag, "theme", "", "color theme: dark or light (default: stored preference)")
	flags.StringVar(&chatProvider, "provider", "", "chat provider: local, remote, openai, gemini")
	flags.StringVar(&chatEndpoint, "endpoint", "", "termfolio proxy URL for the remote provider")
	flags.StringVar(&chatModel, "model", "", "chat model name")
	flags.StringVar(&chatBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	flags.IntVar(&chatMaxTokens, "max-tokens", defaultMaxTokens, "maximum tokens per answer")
	flags.Float64Var(&chatTemperature, "temperature", defaultTemp, "sampling temperature")
	flags.IntVar(&chatTimeoutSec, "timeout", defaultTimeoutSec, "chat request timeout in seconds")
	flags.BoolVar(&analyticsEnabled, "analytics", true, "record usage counters")
	flags.StringVar(&analyticsEndpoint, "analytics-endpoint", "", "termfolio proxy URL receiving analytics events")
	flags.StringVar(&shieldRules, "shield-rules", "", "PromptShield rules YAML (default: XDG config)")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&logFile, "log-file", "", "log file for interactive mode (default: XDG state)")
	flags.StringVar(&dbPath, "db", "", "SQLite database path (default: XDG data)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadSettings merges the config file into flags the user did not set.
func loadSettings(cmd *cobra.Command) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, fileCfg)
	if chatAPIKey == "" {
		switch strings.ToLower(chatProvider) {
		case "openai":
			chatAPIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			chatAPIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	if logFile == "" {
		logFile = config.DefaultLogPath()
	}
	if shieldRules == "" {
		shieldRules = config.DefaultShieldRulesPath()
	}
	return validateSettings()
}

func applyFileConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "content", &contentPath, fileCfg.Terminal.Content)
	applyIntConfig(cmd, "history-size", &historySize, fileCfg.Terminal.HistorySize)
	applyStringConfig(cmd, "theme", &themeFlag, fileCfg.Terminal.Theme)
	applyStringConfig(cmd, "provider", &chatProvider, fileCfg.Chat.Provider)
	applyStringConfig(cmd, "endpoint", &chatEndpoint, fileCfg.Chat.Endpoint)
	applyStringConfig(cmd, "model", &chatModel, fileCfg.Chat.Model)
	applyStringConfig(cmd, "base-url", &chatBaseURL, fileCfg.Chat.BaseURL)
	applyIntConfig(cmd, "max-tokens", &chatMaxTokens, fileCfg.Chat.MaxTokens)
	applyFloatConfig(cmd, "temperature", &chatTemperature, fileCfg.Chat.Temperature)
	applyIntConfig(cmd, "timeout", &chatTimeoutSec, fileCfg.Chat.TimeoutSec)
	applyBoolConfig(cmd, "analytics", &analyticsEnabled, fileCfg.Analytics.Enabled)
	applyStringConfig(cmd, "analytics-endpoint", &analyticsEndpoint, fileCfg.Analytics.Endpoint)
	applyStringConfig(cmd, "shield-rules", &shieldRules, fileCfg.Shield.Rules)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	if fileCfg.Chat.APIKey != nil {
		chatAPIKey = *fileCfg.Chat.APIKey
	}
}

func validateSettings() error {
	if historySize <= 0 {
		return fmt.Errorf("--history-size must be > 0")
	}
	if chatTimeoutSec <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if chatMaxTokens <= 0 {
		return fmt.Errorf("--max-tokens must be > 0")
	}
	if chatTemperature < 0 || chatTemperature > 2 {
		return fmt.Errorf("--temperature must be between 0 and 2")
	}
	switch strings.ToLower(themeFlag) {
	case "", "dark", "light":
	default:
		return fmt.Errorf("--theme must be dark or light")
	}
	return nil
}

func runTerminalCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	a.tracker.Visit(ctx)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return runScript(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	m := tui.NewModel(ctx, tui.Options{
		Portfolio: a.portfolio,
		Chat:      a.chat,
		Tracker:   a.tracker,
		KV:        a.store,
		Prefs:     a.prefs,
		Recall:    a.recall,
		Logger:    a.logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

// flagChanged also reports false for flags the command does not define.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(name)
	}
	return f != nil && f.Changed
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# termfolio configuration
# Uncomment a value to enable it. CLI flags override config values.

[terminal]
# content = "/path/to/portfolio.yaml"  # Portfolio content (default: embedded)
# history-size = %d                    # Commands kept for recall
# theme = "dark"                        # dark or light

[chat]
# provider = "local"        # local, remote, openai, gemini
# endpoint = ""             # termfolio proxy URL (remote provider)
# model = ""                # Provider model name
# api-key = ""              # Falls back to OPENAI_API_KEY / GEMINI_API_KEY
# base-url = ""             # OpenAI-compatible base URL
# max-tokens = %d
# temperature = %.1f
# timeout = %d              # Seconds

[analytics]
# enabled = true
# endpoint = ""             # termfolio proxy URL receiving events

[server]
# addr = %q

[shield]
# rules = ""                # PromptShield rules YAML

[log]
# level = "info"
# file = ""
`,
		terminal.DefaultRecallLimit,
		defaultMaxTokens,
		defaultTemp,
		defaultTimeoutSec,
		defaultAddr,
	)
}
