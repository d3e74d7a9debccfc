// Package config loads runtime configuration from defaults, an optional
// YAML file and TODO_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TODO"

// Config is the complete runtime configuration.
type Config struct {
	// ProjectDir anchors relative storage paths. Defaults to the working directory.
	ProjectDir string `mapstructure:"project_dir"`

	Storage Storage `mapstructure:"storage"`
	HTTP    HTTP    `mapstructure:"http"`

	// Debug enables verbose logging.
	Debug bool `mapstructure:"debug"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	// Backend is one of "json", "sqlite", "postgres", "neo4j" or "memory".
	Backend string `mapstructure:"backend"`

	// JSONDir overrides <project>/.atlantis for the json backend.
	JSONDir string `mapstructure:"json_dir"`

	// SQLitePath overrides <project>/.atlantis/todos.db for the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path"`

	PostgresURL string `mapstructure:"postgres_url"`

	Neo4jURI      string `mapstructure:"neo4j_uri"`
	Neo4jUser     string `mapstructure:"neo4j_user"`
	Neo4jPassword string `mapstructure:"neo4j_password"`
	Neo4jDatabase string `mapstructure:"neo4j_database"`
}

// HTTP configures the HTTP API server.
type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config. configFile may be empty.
//
// Environment variables take the form TODO_<SECTION>_<KEY>, for example
// TODO_STORAGE_BACKEND or TODO_HTTP_ADDR.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "json"
	}

	if strings.TrimSpace(cfg.ProjectDir) == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine project directory: %w", err)
		}
		cfg.ProjectDir = cwd
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Every key needs a default so AutomaticEnv is consulted on Unmarshal
	v.SetDefault("project_dir", "")
	v.SetDefault("debug", false)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.backend", "json")
	v.SetDefault("storage.json_dir", "")
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("storage.postgres_url", "")
	v.SetDefault("storage.neo4j_uri", "")
	v.SetDefault("storage.neo4j_user", "neo4j")
	v.SetDefault("storage.neo4j_password", "")
	v.SetDefault("storage.neo4j_database", "")
}
