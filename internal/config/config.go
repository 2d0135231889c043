package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvProd  = "prod"
)

type Config struct {
	Env     string `yaml:"env" env:"TASKDEN_ENV" env-default:"local"`
	Addr    string `yaml:"addr" env:"TASKDEN_ADDR" env-default:":8080"`
	DataDir string `yaml:"data_dir" env:"TASKDEN_DATA_DIR" env-default:"data"`

	// file | sqlite
	StorageBackend string `yaml:"storage_backend" env:"TASKDEN_STORAGE_BACKEND" env-default:"file"`

	Auth    AuthConfig    `yaml:"auth"`
	Capture CaptureConfig `yaml:"capture"`
}

type AuthConfig struct {
	// JWTSecret signs session tokens; required outside local env.
	JWTSecret string `yaml:"jwt_secret" env:"TASKDEN_JWT_SECRET" env-default:"dev-only-secret"`
}

type CaptureConfig struct {
	// Empty APIKey means the local heuristic extractor is used.
	APIKey  string `yaml:"api_key" env:"TASKDEN_CAPTURE_API_KEY"`
	BaseURL string `yaml:"base_url" env:"TASKDEN_CAPTURE_BASE_URL"`
	Model   string `yaml:"model" env:"TASKDEN_CAPTURE_MODEL"`
}

// Load reads the optional YAML config file, then lets environment
// variables override it. A missing file is not an error; env alone is a
// complete configuration.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
