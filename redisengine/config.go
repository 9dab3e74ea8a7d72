package redisengine

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 6379
)

// Config locates a Redis server. A non-empty Socket takes precedence over
// Host and Port.
type Config struct {
	Host     string `json:"database_ip" yaml:"database_ip"`
	Port     int    `json:"database_port" yaml:"database_port"`
	Socket   string `json:"database_socket,omitempty" yaml:"database_socket,omitempty"`
	DB       int    `json:"database_id" yaml:"database_id"`
	Password string `json:"database_password,omitempty" yaml:"database_password,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Host: DefaultHost,
		Port: DefaultPort,
	}
}

// configFile is the on-disk form. The database_* keys are canonical; the
// short keys are accepted as aliases and lose to them. Absent and null keys
// keep their defaults.
type configFile struct {
	Host     *string `json:"database_ip" yaml:"database_ip"`
	Port     *int    `json:"database_port" yaml:"database_port"`
	Socket   *string `json:"database_socket" yaml:"database_socket"`
	DB       *int    `json:"database_id" yaml:"database_id"`
	Password *string `json:"database_password" yaml:"database_password"`

	HostAlias     *string `json:"host" yaml:"host"`
	PortAlias     *int    `json:"port" yaml:"port"`
	SocketAlias   *string `json:"socket" yaml:"socket"`
	DBAlias       *int    `json:"db" yaml:"db"`
	PasswordAlias *string `json:"password" yaml:"password"`
}

func (f *configFile) apply(cfg *Config) {
	set(&cfg.Host, f.HostAlias, f.Host)
	set(&cfg.Port, f.PortAlias, f.Port)
	set(&cfg.Socket, f.SocketAlias, f.Socket)
	set(&cfg.DB, f.DBAlias, f.DB)
	set(&cfg.Password, f.PasswordAlias, f.Password)
}

func set[T any](dst *T, values ...*T) {
	for _, v := range values {
		if v != nil {
			*dst = *v
		}
	}
}

// LoadConfig reads a JSON config file, or YAML for .yaml and .yml files.
// Keys missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var file configFile
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	default:
		err = json.Unmarshal(raw, &file)
	}
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	file.apply(&cfg)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Socket == "" {
		if c.Host == "" {
			return fmt.Errorf("redis config: host is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("redis config: invalid port %d", c.Port)
		}
	}
	if c.DB < 0 {
		return fmt.Errorf("redis config: invalid db %d", c.DB)
	}
	return nil
}

func (c Config) Network() string {
	if c.Socket != "" {
		return "unix"
	}
	return "tcp"
}

func (c Config) Addr() string {
	if c.Socket != "" {
		return c.Socket
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) Options() *redis.Options {
	return &redis.Options{
		Network:  c.Network(),
		Addr:     c.Addr(),
		DB:       c.DB,
		Password: c.Password,
	}
}

// String omits the password.
func (c Config) String() string {
	return fmt.Sprintf("%s://%s/%d", c.Network(), c.Addr(), c.DB)
}
