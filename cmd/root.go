package cmd

import (
	"context"
	"fmt"
	"io"

	"hotel_concierge/internal/concierge"
	"hotel_concierge/internal/config"
	"hotel_concierge/internal/storage"
	"hotel_concierge/src"
	"hotel_concierge/src/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	cfgFile string
	v       *viper.Viper
}

// NewRootCommand builds the concierge command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "concierge",
		Short: "Huda, the multilingual hotel concierge",
		Long: `Huda answers hotel guests in English, Arabic, Malay, French, Indonesian and Hindi.
It classifies each message, walks guests through room bookings and learns
their preferences across conversations.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "YAML config file overlaid on CONCIERGE_* environment variables")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json or console")
	flags.String("storage", "", "storage backend: memory, file, redis, sqlite")
	flags.String("data-dir", "", "directory of the file storage backend")
	flags.String("sqlite-path", "", "database file of the sqlite storage backend")
	flags.String("language", "", "default reply language")

	_ = opts.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = opts.v.BindPFlag("storage.backend", flags.Lookup("storage"))
	_ = opts.v.BindPFlag("storage.dir", flags.Lookup("data-dir"))
	_ = opts.v.BindPFlag("storage.sqlite_path", flags.Lookup("sqlite-path"))
	_ = opts.v.BindPFlag("engine.language", flags.Lookup("language"))

	rootCmd.AddCommand(
		newChatCommand(opts),
		newServeCommand(opts),
		newAnalyzeCommand(opts),
		newMemoryCommand(opts),
	)
	return rootCmd
}

// Execute runs the command tree.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig layers flags over the config file over the environment.
func (o *rootOptions) loadConfig() (*src.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	override := func(key string, dst *string) {
		if o.v.IsSet(key) {
			*dst = o.v.GetString(key)
		}
	}
	override("log.level", &cfg.Log.Level)
	override("log.format", &cfg.Log.Format)
	override("storage.backend", &cfg.Storage.Backend)
	override("storage.dir", &cfg.Storage.Dir)
	override("storage.sqlite_path", &cfg.Storage.SQLitePath)
	override("engine.language", &cfg.Engine.Language)
	override("server.addr", &cfg.Server.Addr)
	return cfg, nil
}

// app is what a command needs at run time.
type app struct {
	cfg      *src.Config
	registry *concierge.Registry
	logs     io.Closer
}

func (o *rootOptions) open(ctx context.Context) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logs, err := logger.InitLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	deps, err := concierge.NewDeps(ctx, cfg.Engine, storage.OpenOrMemory(ctx, cfg.Storage))
	if err != nil {
		logs.Close()
		return nil, err
	}
	return &app{
		cfg:      cfg,
		registry: concierge.NewRegistry(deps),
		logs:     logs,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.registry.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to close storage")
	}
	a.logs.Close()
}
