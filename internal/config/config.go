// Package config loads settings from ptai.yaml, PTAI_* environment variables
// and defaults, and builds the global logger.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"ptai/internal/database"
	"ptai/internal/schema"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig        `mapstructure:"data" yaml:"data"`
	Columns  schema.Mapping    `mapstructure:"columns" yaml:"columns"`
	Match    MatchConfig       `mapstructure:"match" yaml:"match"`
	Stats    StatsConfig       `mapstructure:"stats" yaml:"stats"`
	Database database.DBConfig `mapstructure:"database" yaml:"database"`
	Output   OutputConfig      `mapstructure:"output" yaml:"output"`
	Log      LogConfig         `mapstructure:"log" yaml:"log"`
}

// DataConfig locates the input files.
type DataConfig struct {
	AttributesPath    string `mapstructure:"attributes_path" yaml:"attributes_path"`
	GeometryPath      string `mapstructure:"geometry_path" yaml:"geometry_path"`
	GeometryNameField string `mapstructure:"geometry_name_field" yaml:"geometry_name_field"`
	SourceCRS         string `mapstructure:"source_crs" yaml:"source_crs"`
	StrictUnique      bool   `mapstructure:"strict_unique" yaml:"strict_unique"`
}

// MatchConfig configures suburb name matching.
type MatchConfig struct {
	FoldDiacritics bool `mapstructure:"fold_diacritics" yaml:"fold_diacritics"`
}

// StatsConfig configures the summary statistics.
type StatsConfig struct {
	MissingPolicy string `mapstructure:"missing_policy" yaml:"missing_policy"`
}

// OutputConfig configures terminal output.
type OutputConfig struct {
	NoColor bool `mapstructure:"no_color" yaml:"no_color"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// New returns a viper instance with defaults and environment binding set up.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName("ptai")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PTAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cols := schema.DefaultMapping()
	v.SetDefault("data.attributes_path", "sydney_sa2_pta_geom_modes.csv")
	v.SetDefault("data.geometry_path", "Assignment_Resources/SA2_2021_AUST_GDA2020.shp")
	v.SetDefault("data.geometry_name_field", "SA2_NAME21")
	v.SetDefault("data.source_crs", "")
	v.SetDefault("data.strict_unique", false)
	v.SetDefault("columns.name", cols.Name)
	v.SetDefault("columns.train", cols.Train)
	v.SetDefault("columns.bus", cols.Bus)
	v.SetDefault("columns.light_rail", cols.LightRail)
	v.SetDefault("columns.metro", cols.Metro)
	v.SetDefault("columns.total", cols.Total)
	v.SetDefault("columns.irsd", cols.IRSD)
	v.SetDefault("match.fold_diacritics", false)
	v.SetDefault("stats.missing_policy", "pairwise")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "1521")
	v.SetDefault("database.service", "XE")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.wallet_location", "")
	v.SetDefault("database.table", "")
	v.SetDefault("output.no_color", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	return v
}

// Load reads the optional config file (or the explicit path) into a Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Marshal renders c as YAML with the database password masked.
func Marshal(c *Config) ([]byte, error) {
	out := *c
	if out.Database.Password != "" {
		out.Database.Password = "********"
	}
	b, err := yaml.Marshal(&out)
	if err != nil {
		return nil, eris.Wrap(err, "config: marshal yaml")
	}
	return b, nil
}

// Save writes c to path as a starting ptai.yaml. An existing file is kept.
func Save(c *Config, path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "config: marshal yaml")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return eris.Wrapf(err, "config: create %s", path)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return eris.Wrapf(err, "config: write %s", path)
	}
	return eris.Wrapf(f.Close(), "config: close %s", path)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
