// Package env holds the configuration of the lobs command.
//
// Values come, in increasing precedence, from defaults, a .lobs.yaml file
// and LOBS_* environment variables (log.level is read from LOBS_LOG_LEVEL).
package env

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes the environment variables read by lobs.
	EnvPrefix = "LOBS"
	// ConfigName is the base name of the optional configuration file.
	ConfigName = ".lobs"
)

// Config is the configuration of the lobs command.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Export ExportConfig `mapstructure:"export"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type ExportConfig struct {
	// DefaultTag is the exporter used when the export command is given none.
	DefaultTag string `mapstructure:"default_tag"`
}

// SetDefaults configures the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("export.default_tag", "")
}

// New returns a viper instance reading configFile, or .lobs.yaml in dir
// when configFile is empty. Only an explicit configFile has to exist.
func New(configFile, dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	return v, nil
}

// Load decodes the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}
