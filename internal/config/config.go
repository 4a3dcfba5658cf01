// Package config loads the application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	DistanceCutPc float64        `yaml:"distance_cut_pc" mapstructure:"distance_cut_pc"`
	StagingDir    string         `yaml:"staging_dir" mapstructure:"staging_dir"`
	Simbad        ServiceConfig  `yaml:"simbad" mapstructure:"simbad"`
	Gaia          ServiceConfig  `yaml:"gaia" mapstructure:"gaia"`
	Exo           ServiceConfig  `yaml:"exo" mapstructure:"exo"`
	Wds           ServiceConfig  `yaml:"wds" mapstructure:"wds"`
	Files         FilesConfig    `yaml:"files" mapstructure:"files"`
	TAP           TAPConfig      `yaml:"tap" mapstructure:"tap"`
	Database      DatabaseConfig `yaml:"database" mapstructure:"database"`
	Server        ServerConfig   `yaml:"server" mapstructure:"server"`
	Log           LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServiceConfig points at one external TAP service.
type ServiceConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// FilesConfig locates reference inputs not available over TAP.
type FilesConfig struct {
	SdbVOTable string `yaml:"sdb_votable" mapstructure:"sdb_votable"`
	MamajekCSV string `yaml:"mamajek_csv" mapstructure:"mamajek_csv"`
}

// TAPConfig tunes the TAP client.
type TAPConfig struct {
	MaxRec int     `yaml:"max_rec" mapstructure:"max_rec"`
	RPS    float64 `yaml:"rps" mapstructure:"rps"`
}

// DatabaseConfig configures the publication loader target.
type DatabaseConfig struct {
	URL    string `yaml:"url" mapstructure:"url"`
	Schema string `yaml:"schema" mapstructure:"schema"`
}

// ServerConfig configures the staging inspection server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TARGETDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("distance_cut_pc", 30.0)
	v.SetDefault("staging_dir", "./data")
	v.SetDefault("simbad.url", "https://simbad.cds.unistra.fr/simbad/sim-tap")
	v.SetDefault("gaia.url", "https://gea.esac.esa.int/tap-server/tap")
	v.SetDefault("exo.url", "http://archives.ia2.inaf.it/vo/tap/projects")
	v.SetDefault("wds.url", "https://tapvizier.cds.unistra.fr/TAPVizieR/tap")
	v.SetDefault("files.sdb_votable", "./data/ref/sdb_30pc.xml")
	v.SetDefault("files.mamajek_csv", "./data/ref/model_param.csv")
	v.SetDefault("tap.max_rec", 1_600_000)
	v.SetDefault("tap.rps", 2.0)
	v.SetDefault("database.schema", "life_td")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.DistanceCutPc <= 0 {
		return nil, eris.Errorf("config: distance_cut_pc must be positive, got %g", cfg.DistanceCutPc)
	}

	return &cfg, nil
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
