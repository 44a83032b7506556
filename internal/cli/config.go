package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reoring/metaskema/schema"
)

// Config is the resolved CLI configuration: flags, then METASKEMA_*
// environment variables, then metaskema.yaml.
type Config struct {
	Manifest     string `mapstructure:"manifest"`
	Type         string `mapstructure:"type"`
	NoCache      bool   `mapstructure:"no-cache"`
	LogLevel     string `mapstructure:"log-level"`
	Lang         string `mapstructure:"lang"`
	Convert      *bool  `mapstructure:"-"`
	AllowUnknown *bool  `mapstructure:"-"`
	AbortEarly   *bool  `mapstructure:"-"`
}

// Options returns the validation options set explicitly by the user.
func (c Config) Options() schema.Options {
	return schema.Options{Convert: c.Convert, AllowUnknown: c.AllowUnknown, AbortEarly: c.AbortEarly}
}

func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetDefault("log-level", "warn")
	v.SetDefault("lang", "en")

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("metaskema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("METASKEMA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Convert = optionalBool(v, "convert")
	cfg.AllowUnknown = optionalBool(v, "allow-unknown")
	cfg.AbortEarly = optionalBool(v, "abort-early")
	return &cfg, nil
}

// optionalBool distinguishes an unset option from an explicit false.
func optionalBool(v *viper.Viper, key string) *bool {
	if !v.IsSet(key) {
		return nil
	}
	b := v.GetBool(key)
	return &b
}
