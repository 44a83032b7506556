// Package cli implements the metaskema command line: describe, resolve and
// validate declarative types loaded from a manifest.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/metaskema"
	"github.com/reoring/metaskema/i18n"
	"github.com/reoring/metaskema/manifest"
	"github.com/reoring/metaskema/meta"
)

// NewRootCommand builds the metaskema command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "metaskema",
		Short: "Validate documents against declarative type constraints",
		Long: `metaskema compiles the types declared in a manifest into validation
schemas and validates JSON or YAML documents against them.

Settings are read from flags, METASKEMA_* environment variables and
metaskema.yaml in the working directory, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a config file (default ./metaskema.yaml)")
	root.PersistentFlags().StringP("manifest", "m", "", "manifest declaring the types")
	root.PersistentFlags().StringP("type", "t", "", "type to use")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("lang", "en", "message language (en, ja)")

	root.AddCommand(NewDescribeCommand())
	root.AddCommand(NewResolveCommand())
	root.AddCommand(NewValidateCommand())
	return root
}

// Execute runs the command tree and reports a failure in red on stderr.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// env is what every subcommand needs: the configuration, a registry with
// the manifest loaded, and the key of the selected type.
type env struct {
	cfg *Config
	reg *metaskema.Registry
	key meta.Key
	log zerolog.Logger
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: color.NoColor}).
		Level(level).With().Timestamp().Logger()
	i18n.SetLanguage(cfg.Lang)

	if cfg.Manifest == "" {
		return nil, fmt.Errorf("no manifest given (--manifest or METASKEMA_MANIFEST)")
	}
	data, err := os.ReadFile(cfg.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	reg := metaskema.New(metaskema.WithLogger(log))
	m, err := manifest.Load(reg.Store(), data)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("manifest", cfg.Manifest).Int("types", len(m.Types)).Msg("manifest loaded")

	if cfg.Type == "" {
		return nil, fmt.Errorf("no type given (--type); the manifest declares %v", m.TypeNames())
	}
	key, ok := reg.Store().Lookup(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("type %q is not declared; the manifest declares %v", cfg.Type, m.TypeNames())
	}
	return &env{cfg: cfg, reg: reg, key: key, log: log}, nil
}

func (e *env) callOptions() []metaskema.CallOption {
	var opts []metaskema.CallOption
	if e.cfg.NoCache {
		opts = append(opts, metaskema.NoCache())
	}
	if o := e.cfg.Options(); !o.IsZero() {
		opts = append(opts, metaskema.WithOptions(o))
	}
	return opts
}

// NewDescribeCommand prints the compiled schema description as JSON.
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the compiled schema of a type as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			d, err := e.reg.Describe(e.key, e.callOptions()...)
			if err != nil {
				return err
			}
			out, err := d.JSON()
			if err != nil {
				return fmt.Errorf("failed to encode description: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

// NewResolveCommand prints the resolved descriptor of a type as YAML.
func NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the descriptor of a type merged with its ancestors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			desc, ok := e.reg.Resolve(e.key)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "# no constraints declared")
				return nil
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(desc); err != nil {
				return fmt.Errorf("failed to encode descriptor: %w", err)
			}
			return enc.Close()
		},
	}
}
