package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/typstmath/internal/config"
	"github.com/zjrosen/typstmath/internal/engine"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/preview"
	"github.com/zjrosen/typstmath/internal/tracing"
	"github.com/zjrosen/typstmath/internal/walker"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply does not race the input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".typstmath/config.yaml"

var (
	version     = "dev"
	cfgFile     string
	cfg         config.Config
	debugFlag   bool
	modeFlag    int
	outsideFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "typstmath",
	Short: "Preview Typst math with Unicode glyphs",
	Long: `typstmath turns Typst math source into decorations: the glyph that
replaces each symbol name, shorthand, sub/superscript and simple call, with
the byte spans it covers. Decorations can be previewed in the terminal,
emitted as JSON, watched for changes or served over HTTP.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .typstmath/config.yaml, then ~/.config/typstmath/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also TYPSTMATH_DEBUG)")
	rootCmd.PersistentFlags().IntVarP(&modeFlag, "mode", "m", walker.TierRewrites,
		fmt.Sprintf("rendering tier 0-%d (overrides rendering_mode)", walker.MaxRenderingMode))
	rootCmd.PersistentFlags().BoolVar(&outsideFlag, "outside", false,
		"decorate #sym references outside math (overrides render_outside_math)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("rendering_mode", defaults.RenderingMode)
	viper.SetDefault("render_outside_math", defaults.RenderOutsideMath)
	viper.SetDefault("max_nodes", defaults.MaxNodes)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("serve.addr", defaults.Serve.Addr)
	viper.SetDefault("serve.read_timeout", defaults.Serve.ReadTimeout)
	viper.SetDefault("serve.write_timeout", defaults.Serve.WriteTimeout)
	viper.SetDefault("serve.max_body_bytes", defaults.Serve.MaxBodyBytes)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .typstmath/config.yaml (current directory)
		// 2. ~/.config/typstmath/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "typstmath"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config anywhere: create the commented default locally.
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
}

// setup runs before every subcommand: debug logging, flag overrides and
// config validation.
func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv("TYPSTMATH_DEBUG") != "" {
		logPath := os.Getenv("TYPSTMATH_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		initLog := log.Init
		if cmd == viewCmd {
			// Route bubbletea's own log output to the same file.
			initLog = func(path string) (func(), error) { return log.InitWithTeaLog(path, "typstmath") }
		}
		cleanup, err := initLog(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		cobra.OnFinalize(cleanup)
		log.Info(log.CatConfig, "typstmath starting", "version", version, "config", viper.ConfigFileUsed())
	}

	if cmd.Flags().Changed("mode") {
		cfg.RenderingMode = modeFlag
	}
	if cmd.Flags().Changed("outside") {
		cfg.RenderOutsideMath = outsideFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return nil
}

// configPath is the file toggles are saved to.
func configPath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return localConfigPath
}

// tracingConfig maps the user config onto the tracing package.
func tracingConfig() tracing.Config {
	tc := tracing.DefaultConfig()
	tc.Enabled = cfg.Tracing.Enabled
	tc.Exporter = cfg.Tracing.Exporter
	tc.FilePath = cfg.Tracing.FilePath
	if tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	tc.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	tc.SampleRate = cfg.Tracing.SampleRate
	return tc
}

// newEngine builds the engine and its tracer provider. The returned func
// flushes and shuts the provider down.
func newEngine() (*engine.Engine, *tracing.Provider, func(), error) {
	provider, err := tracing.NewProvider(tracingConfig())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating tracer: %w", err)
	}
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "tracer shutdown failed", err)
		}
	}

	eng, err := engine.NewFromConfig(cfg, provider.Tracer())
	if err != nil {
		shutdown()
		return nil, nil, nil, err
	}
	return eng, provider, shutdown, nil
}

// theme applies the configured palette to the default preview theme.
func theme() (preview.Theme, error) {
	palette, err := cfg.Theme.Palette()
	if err != nil {
		return preview.Theme{}, err
	}
	return preview.DefaultTheme().WithPalette(palette), nil
}

// readSource reads the named file, or stdin when path is empty or "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// reportProblems prints walk problems to stderr. They never fail a command.
func reportProblems(cmd *cobra.Command, res *engine.Result) {
	for _, problem := range engine.Flatten(res.Problems) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", problem)
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
