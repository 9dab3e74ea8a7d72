package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreyvit/glass"
	"github.com/andreyvit/glass/redisengine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string
	Backend  string
	BoltPath string
	Config   string
	Codec    string
	PageSize int

	Redis redisengine.Config
}

var (
	ValidFormats  = []string{"text", "json"}
	ValidBackends = []string{"redis", "bolt"}
)

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Redis: redisengine.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "glass",
		Short: "Inspect and edit the Rainfusion mod catalogue",
		Long: `Inspect and edit the Rainfusion mod catalogue stored in Redis
(or in a local Bolt file).

Connection settings come from --config (JSON, or YAML for .yaml/.yml),
overridden by --host, --port, --socket, --db and --password.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if !slices.Contains(ValidBackends, opts.Backend) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid backend %q: must be one of %v", opts.Backend, ValidBackends))
			}
			if _, err := glass.CodecByName(opts.Codec); err != nil {
				return WrapExitError(ExitCommandError, "invalid codec", err)
			}
			return opts.loadConfig(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "log every store operation to stderr")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.Backend, "backend", "redis", "storage backend (redis|bolt)")
	pf.StringVar(&opts.BoltPath, "bolt-path", "glass.db", "database file for the bolt backend")
	pf.StringVarP(&opts.Config, "config", "c", "", "Redis connection config file")
	pf.StringVar(&opts.Codec, "codec", "json", "codec for nested fields (json|msgpack|yaml|cbor, optionally zstd+...)")
	pf.IntVar(&opts.PageSize, "page-size", glass.DefaultPageSize, "records per page")
	pf.StringVar(&opts.Redis.Host, "host", redisengine.DefaultHost, "Redis host")
	pf.IntVar(&opts.Redis.Port, "port", redisengine.DefaultPort, "Redis port")
	pf.StringVar(&opts.Redis.Socket, "socket", "", "Redis unix socket (overrides host and port)")
	pf.IntVar(&opts.Redis.DB, "db", 0, "Redis database number")
	pf.StringVar(&opts.Redis.Password, "password", "", "Redis password")

	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewFirstCommand(opts))
	cmd.AddCommand(NewLastCommand(opts))
	cmd.AddCommand(NewBumpCommand(opts))

	return cmd
}

// loadConfig applies the config file underneath any connection flags given
// explicitly on the command line.
func (o *RootOptions) loadConfig(cmd *cobra.Command) error {
	if o.Config == "" {
		return nil
	}
	cfg, err := redisengine.LoadConfig(o.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = o.Redis.Host
	}
	if flags.Changed("port") {
		cfg.Port = o.Redis.Port
	}
	if flags.Changed("socket") {
		cfg.Socket = o.Redis.Socket
	}
	if flags.Changed("db") {
		cfg.DB = o.Redis.DB
	}
	if flags.Changed("password") {
		cfg.Password = o.Redis.Password
	}
	o.Redis = cfg
	return nil
}

func (o *RootOptions) openEngine(ctx context.Context) (glass.Engine, error) {
	switch o.Backend {
	case "bolt":
		return glass.OpenBolt(o.BoltPath, glass.BoltOptions{})
	default:
		return redisengine.Dial(ctx, o.Redis)
	}
}

// openStore connects to the configured backend. The caller closes the store.
func (o *RootOptions) openStore(ctx context.Context) (*glass.Store, error) {
	codec, err := glass.CodecByName(o.Codec)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid codec", err)
	}
	logger := zap.NewNop()
	if o.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, WrapExitError(ExitFailure, "failed to set up logging", err)
		}
	}
	eng, err := o.openEngine(ctx)
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("failed to open %s backend", o.Backend), err)
	}
	return glass.New(eng, glass.Options{
		Codec:    codec,
		PageSize: o.PageSize,
		Logger:   logger,
		Verbose:  o.Verbose,
	}), nil
}

func (o *RootOptions) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

func parseIDArg(s string) (glass.ID, error) {
	id, err := glass.ParseID(s)
	if err != nil {
		return glass.NilID, WrapExitError(ExitCommandError, "invalid id", err)
	}
	return id, nil
}
