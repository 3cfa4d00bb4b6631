package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/augtree/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Formats(t *testing.T) {
	t.Setenv(config.EnvRoot, "")

	files := map[string]string{
		"augtree.yaml": `
root: /srv/chroot
backend: redis
redis:
  addr: redis:6379
  ttl: 1h
  lock_ttl: 30s
transforms:
  - lens: Hosts.lns
    incl: [/etc/hosts]
`,
		"augtree.toml": `
root = "/srv/chroot"
backend = "redis"

[redis]
addr = "redis:6379"
ttl = "1h"
lock_ttl = "30s"

[[transforms]]
lens = "Hosts.lns"
incl = ["/etc/hosts"]
`,
		"augtree.jsonc": `{
  // comments and trailing commas are fine
  "root": "/srv/chroot",
  "backend": "redis",
  "redis": {"addr": "redis:6379", "ttl": "1h", "lock_ttl": "30s",},
  "transforms": [{"lens": "Hosts.lns", "incl": ["/etc/hosts"]}],
}`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Load(write(t, name, content))
			require.NoError(t, err)

			assert.Equal(t, "/srv/chroot", cfg.Root)
			assert.Equal(t, config.BackendRedis, cfg.Backend)
			assert.Equal(t, "redis:6379", cfg.Redis.Addr)
			assert.Equal(t, time.Hour, cfg.Redis.TTL.Duration)
			assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL.Duration)
			assert.Equal(t, "augtree:", cfg.Redis.Prefix)
			assert.Equal(t, []config.TransformConfig{{Lens: "Hosts.lns", Incl: []string{"/etc/hosts"}}}, cfg.Transforms)
		})
	}
}

func TestDefault_RootFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvRoot, "/mnt/image")
	cfg := config.Default()
	assert.Equal(t, "/mnt/image", cfg.Root)
	assert.Equal(t, config.BackendMemory, cfg.Backend)
	assert.Equal(t, "default", cfg.Snapshot)

	t.Setenv(config.EnvRoot, "")
	assert.Equal(t, "/", config.Default().Root)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config file not found")

	_, err = config.Load(write(t, "augtree.ini", "root=/"))
	assert.ErrorContains(t, err, `unsupported config format ".ini"`)

	_, err = config.Load(write(t, "augtree.yaml", "backend: etcd\n"))
	assert.ErrorContains(t, err, `unknown backend "etcd"`)

	_, err = config.Load(write(t, "augtree.yaml", "transforms:\n  - lens: Hosts.lns\n"))
	assert.ErrorContains(t, err, "transforms[0]: at least one incl is required")

	_, err = config.Load(write(t, "augtree.yaml", "redis:\n  ttl: soon\n"))
	assert.Error(t, err)
}
