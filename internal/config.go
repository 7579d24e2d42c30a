package internal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tuannm99/tabdb/internal/logging"
)

type TabDBConfig struct {
	AppName string `mapstructure:"app_name" yaml:"app_name"`

	Storage struct {
		Root string `mapstructure:"root" yaml:"root"`
	} `mapstructure:"storage" yaml:"storage"`

	Server struct {
		Addr  string `mapstructure:"addr" yaml:"addr"`
		Debug bool   `mapstructure:"debug" yaml:"debug"`
	} `mapstructure:"server" yaml:"server"`

	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`
}

// NewViper returns a viper instance with defaults and TABDB_* environment
// overrides (TABDB_STORAGE_ROOT, TABDB_SERVER_ADDR, ...).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("app_name", "tabdb")
	v.SetDefault("storage.root", "./data")
	v.SetDefault("server.addr", "127.0.0.1:8866")
	v.SetDefault("server.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("tabdb")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the YAML file at path on top of the defaults. An empty
// path or a missing file yields the defaults.
func LoadConfig(path string) (*TabDBConfig, error) {
	v := NewViper()
	if err := ReadConfigFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ReadConfigFile merges the YAML file at path into v. A missing file is not
// an error.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func Decode(v *viper.Viper) (*TabDBConfig, error) {
	var cfg TabDBConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// DumpConfig writes cfg as YAML.
func DumpConfig(w io.Writer, cfg *TabDBConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("dump config: %w", err)
	}
	return enc.Close()
}

// WatchLogLevel re-reads log.level whenever the config file changes and
// applies it to lv.
func WatchLogLevel(v *viper.Viper, lv *slog.LevelVar) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		applyLogLevel(v, lv)
	})
	v.WatchConfig()
}

func applyLogLevel(v *viper.Viper, lv *slog.LevelVar) {
	lvl, err := logging.ParseLevel(v.GetString("log.level"))
	if err != nil {
		slog.Warn("config: ignoring log level", "err", err)
		return
	}
	if lvl != lv.Level() {
		slog.Info("config: log level changed", "level", lvl)
		lv.Set(lvl)
	}
}
