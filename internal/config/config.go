package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultEnv         = "local"
	defaultAddr        = "localhost:8080"
	defaultTimeout     = 4 * time.Second
	defaultIdleTimeout = 60 * time.Second
	defaultAccessTTL   = 5 * time.Minute
	defaultRefreshTTL  = 24 * time.Hour
	defaultRPS         = 5
	defaultBurst       = 10
	defaultIdleTTL     = 10 * time.Minute
	defaultBcryptCost  = 10
)

var configPathFlag = flag.String("config_path", "", "path to config")

type Config struct {
	Env        string `yaml:"env"`
	DBURL      string `yaml:"db_url"`
	Migrate    bool   `yaml:"migrate"`
	BcryptCost int    `yaml:"bcrypt_cost"`
	HTTPServer `yaml:"http_server"`
	JWT        JWT      `yaml:"jwt"`
	Redis      Redis    `yaml:"redis"`
	Throttle   Throttle `yaml:"throttle"`
}

type HTTPServer struct {
	Addr        string        `yaml:"addr"`
	Timeout     time.Duration `yaml:"timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type JWT struct {
	Secret        string        `yaml:"secret"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
	RotateRefresh bool          `yaml:"rotate_refresh"`
}

// Redis is optional; an empty Addr keeps the token denylist in memory.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Throttle struct {
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	return config
}

func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configPath, ok := getConfigPath()
	if !ok {
		return nil, errors.New("config path is not set")
	}
	return LoadConfigFromFile(configPath)
}

func LoadConfigFromFile(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(configData, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.applyEnv()
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"DB_URL":     &c.DBURL,
		"JWT_SECRET": &c.JWT.Secret,
		"REDIS_ADDR": &c.Redis.Addr,
		"HTTP_ADDR":  &c.Addr,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = defaultAccessTTL
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = defaultRefreshTTL
	}
	if c.Throttle.RPS == 0 {
		c.Throttle.RPS = defaultRPS
	}
	if c.Throttle.Burst == 0 {
		c.Throttle.Burst = defaultBurst
	}
	if c.Throttle.IdleTTL == 0 {
		c.Throttle.IdleTTL = defaultIdleTTL
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = defaultBcryptCost
	}
}

func (c *Config) validate() error {
	switch c.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.DBURL == "" {
		return errors.New("db_url is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.JWT.AccessTTL < 0 || c.JWT.RefreshTTL < 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.Throttle.RPS < 0 || c.Throttle.Burst < 0 {
		return errors.New("throttle limits must be positive")
	}
	return nil
}

func getConfigPath() (configPath string, ok bool) {
	if !flag.Parsed() {
		flag.Parse()
	}
	configPath = *configPathFlag

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	return configPath, configPath != ""
}
