package redisengine_test

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreyvit/glass/redisengine"
)

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	return host, port, err
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfig_Defaults(t *testing.T) {
	cfg := redisengine.DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "tcp", cfg.Network())
	require.Equal(t, "localhost:6379", cfg.Addr())
	require.Equal(t, "tcp://localhost:6379/0", cfg.String())

	opt := cfg.Options()
	require.Equal(t, "tcp", opt.Network)
	require.Equal(t, "localhost:6379", opt.Addr)
	require.Zero(t, opt.DB)
}

func TestConfig_Socket(t *testing.T) {
	cfg := redisengine.Config{Socket: "/run/redis.sock", DB: 2, Password: "secret"}
	require.NoError(t, cfg.Validate())
	require.Equal(t, "unix", cfg.Network())
	require.Equal(t, "/run/redis.sock", cfg.Addr())
	require.Equal(t, "unix:///run/redis.sock/2", cfg.String())
	require.NotContains(t, cfg.String(), "secret")
	require.Equal(t, "secret", cfg.Options().Password)
}

func TestConfig_Validate(t *testing.T) {
	for _, cfg := range []redisengine.Config{
		{Host: "", Port: 6379},
		{Host: "h", Port: 0},
		{Host: "h", Port: 70000},
		{Host: "h", Port: 6379, DB: -1},
	} {
		require.Error(t, cfg.Validate(), "%+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "redis.json", `{"host": "cache.internal", "db": 3}`)
	cfg, err := redisengine.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, redisengine.Config{Host: "cache.internal", Port: 6379, DB: 3}, cfg)

	path = writeFile(t, "redis.yaml", "socket: /tmp/redis.sock\npassword: pw\n")
	cfg, err = redisengine.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, redisengine.Config{Host: "localhost", Port: 6379, Socket: "/tmp/redis.sock", Password: "pw"}, cfg)

	// canonical keys win over the short aliases
	path = writeFile(t, "both.json", `{"host": "alias", "database_ip": "canonical", "port": 1, "database_port": 2}`)
	cfg, err = redisengine.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, redisengine.Config{Host: "canonical", Port: 2}, cfg)

	_, err = redisengine.LoadConfig(writeFile(t, "bad.json", `{"port": "x"}`))
	require.Error(t, err)

	_, err = redisengine.LoadConfig(writeFile(t, "bad.yml", "port: 0\n"))
	require.ErrorContains(t, err, "invalid port")

	_, err = redisengine.LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_DatabaseKeys(t *testing.T) {
	path := writeFile(t, "redis.json", `{
		"database_ip": "10.0.0.5",
		"database_port": 6380,
		"database_socket": null,
		"database_id": 3,
		"database_password": "hunter2"
	}`)
	cfg, err := redisengine.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, redisengine.Config{Host: "10.0.0.5", Port: 6380, DB: 3, Password: "hunter2"}, cfg)
	require.Equal(t, "10.0.0.5:6380", cfg.Options().Addr)

	path = writeFile(t, "redis.yml", "database_ip: ~\ndatabase_socket: /run/redis.sock\ndatabase_id: 1\n")
	cfg, err = redisengine.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, redisengine.Config{Host: "localhost", Port: 6379, Socket: "/run/redis.sock", DB: 1}, cfg)

	raw, err := json.Marshal(redisengine.Config{Host: "h", Port: 1, DB: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"database_ip": "h", "database_port": 1, "database_id": 2}`, string(raw))
}
