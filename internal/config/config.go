// Package config loads gomata settings from defaults, a config file when
// one is named, GOMATA_* environment variables and command-line flags, in
// increasing order of precedence.
//
// Environment variables follow the key path with dots replaced by
// underscores:
//
//	GOMATA_STORAGE_DRIVER: json|memory|sqlite|postgres (default json)
//	GOMATA_STORAGE_DATABASE_FILE or GOMATA_DATABASE_FILE: JSON document path (default cattle_database.json)
//	GOMATA_STORAGE_SQLITE_PATH or GOMATA_SQLITE_PATH: sqlite file (default gomata.db)
//	GOMATA_STORAGE_POSTGRES_DSN or GOMATA_POSTGRES_DSN: postgres DSN when driver=postgres
//	GOMATA_BLOB_DRIVER: fs|s3|memory (default fs)
//	GOMATA_BLOB_FS_ROOT: archive directory when driver=fs (default backups)
//	GOMATA_BLOB_S3_BUCKET, GOMATA_BLOB_S3_REGION, GOMATA_BLOB_S3_ENDPOINT,
//	GOMATA_BLOB_S3_PATH_STYLE, GOMATA_BLOB_S3_ACCESS_KEY_ID,
//	GOMATA_BLOB_S3_SECRET_ACCESS_KEY: S3 settings when driver=s3
//	GOMATA_LOG_LEVEL: debug|info|warn|error (default warn)
//	GOMATA_LOG_FORMAT: text|json (default text)
package config

import (
	"fmt"
	"gomata/internal/blob"
	"gomata/internal/core"
	"gomata/internal/logging"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GOMATA"

// Config is the resolved application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Blob    BlobConfig    `mapstructure:"blob"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig selects the record store backend.
type StorageConfig struct {
	Driver       string `mapstructure:"driver"`
	DatabaseFile string `mapstructure:"database_file"`
	SQLitePath   string `mapstructure:"sqlite_path"`
	PostgresDSN  string `mapstructure:"postgres_dsn"`
}

// BlobConfig selects the snapshot archive backend.
type BlobConfig struct {
	Driver string   `mapstructure:"driver"`
	FSRoot string   `mapstructure:"fs_root"`
	S3     S3Config `mapstructure:"s3"`
}

// S3Config configures the S3 archive driver.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	PathStyle       bool   `mapstructure:"path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FlagBindings maps configuration keys to flag names. Only flags present in
// the flag set and explicitly set by the user override other sources.
var FlagBindings = map[string]string{
	"storage.database_file": "db",
	"storage.driver":        "storage",
	"log.level":             "log-level",
	"log.format":            "log-format",
	"blob.driver":           "blob-driver",
	"blob.fs_root":          "backup-dir",
}

// legacyEnv binds keys to the short variable names documented for the
// storage backends.
var legacyEnv = map[string]string{
	"storage.database_file": "GOMATA_DATABASE_FILE",
	"storage.sqlite_path":   "GOMATA_SQLITE_PATH",
	"storage.postgres_dsn":  "GOMATA_POSTGRES_DSN",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", string(core.StorageJSON))
	v.SetDefault("storage.database_file", "cattle_database.json")
	v.SetDefault("storage.sqlite_path", "gomata.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("blob.driver", string(blob.DriverFilesystem))
	v.SetDefault("blob.fs_root", "backups")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.region", "")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.path_style", false)
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

// Load resolves configuration. file may be empty; a named file must exist.
// flags may be nil.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	if flags != nil {
		for key, name := range FlagBindings {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// StorageOptions converts the storage section for core.OpenPersistentStore.
func (c *Config) StorageOptions() core.StorageOptions {
	return core.StorageOptions{
		Driver:       core.StorageDriver(c.Storage.Driver),
		DatabaseFile: c.Storage.DatabaseFile,
		SQLitePath:   c.Storage.SQLitePath,
		PostgresDSN:  c.Storage.PostgresDSN,
	}
}

// BlobConfig converts the blob section for blob.Open.
func (c *Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:          c.Blob.S3.Bucket,
			Region:          c.Blob.S3.Region,
			Endpoint:        c.Blob.S3.Endpoint,
			PathStyle:       c.Blob.S3.PathStyle,
			AccessKeyID:     c.Blob.S3.AccessKeyID,
			SecretAccessKey: c.Blob.S3.SecretAccessKey,
		},
	}
}

// LoggingConfig converts the log section for logging.New.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
