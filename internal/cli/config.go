package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySyncStrategy  = "sync.strategy"
	cfgKeyBatchInterval = "sync.batch_interval"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogFormat     = "log_format"

	defaultBackend   = types.BackendSQLite
	defaultLogLevel  = "warn"
	defaultLogFormat = "text"

	envPrefix = "ROLODEX"
)

// configFile holds the structure written to config.yaml on first run.
type configFile struct {
	Backend   string         `yaml:"backend"`
	DataDir   string         `yaml:"data_dir,omitempty"`
	Sync      syncConfigFile `yaml:"sync"`
	LogLevel  string         `yaml:"log_level"`
	LogFormat string         `yaml:"log_format"`
}

type syncConfigFile struct {
	Strategy      string `yaml:"strategy"`
	BatchInterval int    `yaml:"batch_interval"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend: defaultBackend,
		Sync: syncConfigFile{
			Strategy:      types.SyncImmediate,
			BatchInterval: int(types.DefaultBatchInterval.Seconds()),
		},
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}

// envKeys can be overridden with a ROLODEX_ environment variable, e.g.
// ROLODEX_SYNC_STRATEGY. data_dir is left out: ROLODEX_DATA_DIR ranks below
// config.yaml and is handled by the paths package.
var envKeys = []string{cfgKeyBackend, cfgKeySyncStrategy, cfgKeyBatchInterval, cfgKeyLogLevel, cfgKeyLogFormat}

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, paths.ConfigFileName)); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	def := defaultConfigFile()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeySyncStrategy, def.Sync.Strategy)
	v.SetDefault(cfgKeyBatchInterval, def.Sync.BatchInterval)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# rolodex configuration\n# backend: memory | sqlite | jsonl\n# sync.strategy: immediate | on_close | batch\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// storageConfig builds the backend config from Viper and the resolved data
// directory.
func storageConfig(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		Sync: types.SyncConfig{
			Strategy:      v.GetString(cfgKeySyncStrategy),
			BatchInterval: v.GetInt(cfgKeyBatchInterval),
		},
	}
}

// configureLogging points the standard logrus logger at out with the
// configured level and format.
func configureLogging(v *viper.Viper, out io.Writer) error {
	level, err := logrus.ParseLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	var formatter logrus.Formatter
	switch format := v.GetString(cfgKeyLogFormat); format {
	case "text", "":
		formatter = &logrus.TextFormatter{DisableTimestamp: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return fmt.Errorf("log_format: unknown format %q (valid: text, json)", format)
	}

	logger := logrus.StandardLogger()
	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	logger.SetOutput(out)
	return nil
}
