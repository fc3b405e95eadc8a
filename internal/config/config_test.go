package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIBase(t *testing.T) {
	tests := []struct {
		name  string
		flag  string
		env   string
		local bool
		want  string
	}{
		{"default is hosted", "", "", false, RemoteAPIBase},
		{"local", "", "", true, LocalAPIBase},
		{"env beats local", "", "http://api.test/api/", true, "http://api.test/api"},
		{"flag beats env", "http://flag.test/api", "http://api.test/api", false, "http://flag.test/api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIBase, tt.env)
			assert.Equal(t, tt.want, ResolveAPIBase(tt.flag, tt.local))
		})
	}
}

func TestNew_ConfigDirPrecedence(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	cfg, err := New("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", AppName), cfg.Dir)

	t.Setenv(EnvConfigDir, "/from-env")
	cfg, err = New("")
	require.NoError(t, err)
	assert.Equal(t, "/from-env", cfg.Dir)

	cfg, err = New("/explicit")
	require.NoError(t, err)
	assert.Equal(t, "/explicit", cfg.Dir)
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Dir: filepath.Join(dir, "nested"), APIBase: "http://x/api"}

	assert.Equal(t, "http://x/api/auth", cfg.AuthURL())
	assert.Equal(t, "http://x/api/tasks", cfg.TasksURL())
	assert.Equal(t, filepath.Join(dir, "nested", TokenFile), cfg.TokenPath())
	assert.False(t, cfg.HasToken())
	require.NoError(t, cfg.EnsureDir())
	assert.DirExists(t, cfg.Dir)
}
