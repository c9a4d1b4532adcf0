package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	envPrefix = "FESTIVAL"
)

type Config struct {
	Env     string        `mapstructure:"env" validate:"oneof=development production"`
	Log     LogConfig     `mapstructure:"log"`
	Search  SearchConfig  `mapstructure:"search"`
	Solvers SolversConfig `mapstructure:"solvers"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// SearchConfig tunes the local search and bounds every strategy in time
type SearchConfig struct {
	Seed               uint64        `mapstructure:"seed"` // 0 picks a random seed
	InitialTemperature float64       `mapstructure:"initial_temperature" validate:"gtfield=TemperatureFloor"`
	TemperatureFloor   float64       `mapstructure:"temperature_floor" validate:"gt=0"`
	Cooling            float64       `mapstructure:"cooling" validate:"gt=0,lt=1"`
	MaxIterations      int           `mapstructure:"max_iterations" validate:"gte=0"` // 0 means unbounded
	TimeLimit          time.Duration `mapstructure:"time_limit" validate:"gte=0"`     // 0 means no limit
}

type SolversConfig struct {
	KissatPath  string `mapstructure:"kissat_path" validate:"required"`
	MinisatPath string `mapstructure:"minisat_path" validate:"required"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // Empty disables the endpoint
}

// Load builds the configuration from defaults, the optional file (any format viper understands), a .env file in the
// working directory and FESTIVAL_* environment variables, in increasing order of precedence
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("search.seed", 0)
	v.SetDefault("search.initial_temperature", 0.1)
	v.SetDefault("search.temperature_floor", 5e-7)
	v.SetDefault("search.cooling", 0.999)
	v.SetDefault("search.max_iterations", 0)
	v.SetDefault("search.time_limit", "0s")

	v.SetDefault("solvers.kissat_path", "kissat")
	v.SetDefault("solvers.minisat_path", "minisat")

	v.SetDefault("metrics.addr", "")
}
