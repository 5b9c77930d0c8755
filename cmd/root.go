// Package cmd implements the regview command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/regview/internal/app"
	"github.com/zjrosen/regview/internal/config"
	"github.com/zjrosen/regview/internal/explorer"
	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/registry"
	"github.com/zjrosen/regview/internal/tracing"
)

func init() {
	// Query the terminal background before Bubble Tea owns stdin, otherwise
	// the OSC 11 reply can land in the search box.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	closeLog func()
)

var rootCmd = &cobra.Command{
	Use:   "regview [fragment]",
	Short: "A terminal explorer for registry objects",
	Long: `A terminal explorer for a registry explorer service: search the object
index, open objects, follow the references between them and walk back and
forward through what you visited.

The optional fragment opens a view directly:

  regview '?FOO-MNT'            search for FOO-MNT
  regview '/mntner/FOO-MNT'     open one object`,
	Version:           version,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: setupLogging,
	RunE:              runApp,
	SilenceUsage:      true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/regview/config.yaml)")
	rootCmd.PersistentFlags().String("url", "",
		"registry service base URL (overrides server.base_url)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log and enable the log overlay (ctrl+x)")

	// Bind flags to viper
	_ = viper.BindPFlag("server.base_url", rootCmd.PersistentFlags().Lookup("url"))
}

func initConfig() {
	setDefaults()

	// REGVIEW_SERVER_BASE_URL and friends
	viper.SetEnvPrefix("REGVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	userConfig := userConfigPath()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .regview/config.yaml (current directory)
		// 2. ~/.config/regview/config.yaml (user config)
		if _, err := os.Stat(".regview/config.yaml"); err == nil {
			viper.SetConfigFile(".regview/config.yaml")
		} else if userConfig != "" {
			viper.AddConfigPath(filepath.Dir(userConfig))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && userConfig != "" {
			// First run: leave a commented config behind to edit.
			if writeErr := config.WriteDefaultConfig(userConfig); writeErr == nil {
				viper.SetConfigFile(userConfig)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func setDefaults() {
	defaults := config.Defaults()
	viper.SetDefault("server.base_url", defaults.Server.BaseURL)
	viper.SetDefault("server.timeout", defaults.Server.Timeout)
	viper.SetDefault("server.user_agent", defaults.Server.UserAgent)
	viper.SetDefault("search.min_query_length", defaults.Search.MinQueryLength)
	viper.SetDefault("search.batch_size", defaults.Search.BatchSize)
	viper.SetDefault("search.debounce", defaults.Search.Debounce)
	viper.SetDefault("history.snapshot_ttl", defaults.History.SnapshotTTL)
	viper.SetDefault("ui.show_counts", defaults.UI.ShowCounts)
	viper.SetDefault("ui.mouse", defaults.UI.Mouse)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "regview", "config.yaml")
}

// configPath is the file settings are saved to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if cfgFile != "" {
		return cfgFile
	}
	return userConfigPath()
}

func setupLogging(_ *cobra.Command, _ []string) error {
	if os.Getenv("REGVIEW_DEBUG") == "" && !debugFlag {
		return nil
	}
	debugFlag = true

	logPath := os.Getenv("REGVIEW_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	closeLog = cleanup

	log.Info(log.CatConfig, "regview starting", "version", version, "config", viper.ConfigFileUsed(), "logPath", logPath)
	return nil
}

// session bundles the registry client with the tracing provider that
// instruments it.
type session struct {
	client   *registry.Client
	provider *tracing.Provider
}

func newSession(c config.Config) (*session, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	client, err := registry.NewClient(c.Server.BaseURL,
		registry.WithTimeout(c.Server.Timeout),
		registry.WithUserAgent(c.Server.UserAgent),
		registry.WithTracer(provider.Tracer()),
	)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}
	return &session{client: client, provider: provider}, nil
}

func (s *session) Close() {
	if err := s.provider.Shutdown(context.Background()); err != nil {
		log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
	}
}

func navigatorOptions(c config.Config) explorer.Options {
	return explorer.Options{
		MinQueryLength: c.Search.MinQueryLength,
		BatchSize:      c.Search.BatchSize,
		SnapshotTTL:    c.History.SnapshotTTL,
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	var fragment string
	if len(args) == 1 {
		fragment = args[0]
	}

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := newModel(ctx, sess, cfg, fragment, debugFlag)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, opts...)
	watchConfig(p)

	_, err = p.Run()
	model.Close()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// newModel wires the explorer to sess and sets up the click zone manager
// the views mark results with.
func newModel(ctx context.Context, sess *session, c config.Config, fragment string, debug bool) app.Model {
	zone.NewGlobal()

	nav := explorer.NewNavigator(ctx,
		explorer.NewIndexCache(sess.client),
		explorer.NewResolver(sess.client),
		navigatorOptions(c),
	)
	return app.New(nav, app.Options{
		Config:   c,
		Server:   sess.client.BaseURL(),
		Fragment: fragment,
		Debug:    debug,
	})
}

// Execute runs the root command
func Execute() error {
	defer func() {
		if closeLog != nil {
			closeLog()
		}
	}()
	return rootCmd.ExecuteContext(context.Background())
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
