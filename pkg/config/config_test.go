// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	c := Default()
	c.Alias = "prod1"
	c.Database = "ORCL"
	c.User = "c##redo"
	c.Passwd = "secret"
	c.ConnectString = "orcl-host:1521/ORCLPDB1"
	c.CheckpointDir = "/var/lib/oraredo"
	return c
}

func TestValidateRequiresConnectionFields(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		mutate  func(c *Config)
	}{
		{"alias", func(c *Config) { c.Alias = "" }},
		{"database", func(c *Config) { c.Database = "" }},
		{"user", func(c *Config) { c.User = "" }},
		{"connect-string", func(c *Config) { c.ConnectString = "" }},
		{"redo-read-sleep", func(c *Config) { c.RedoReadSleep = 0 }},
		{"checkpoint-interval", func(c *Config) { c.CheckpointInterval = -1 }},
		{"redo-buffers", func(c *Config) { c.RedoBuffers = 0 }},
		{"redo-buffer-size", func(c *Config) { c.RedoBufferSize = 0 }},
		{"max-concurrent-transactions", func(c *Config) { c.MaxConcurrentTransactions = 0 }},
		{"checkpoint-dir", func(c *Config) { c.CheckpointDir = "" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := validConfig()
			tc.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	t.Parallel()
	require.NoError(t, validConfig().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "oraredo.toml")
	body := `
alias = "prod1"
database = "ORCL"
user = "c##redo"
passwd = "secret"
connect-string = "orcl-host:1521/ORCLPDB1"
checkpoint-dir = "/var/lib/oraredo"
redo-buffers = 128
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod1", cfg.Alias)
	require.Equal(t, 128, cfg.RedoBuffers)
	// Untouched fields keep their Default() value.
	require.Equal(t, DefaultRedoBufferSize, cfg.RedoBufferSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()
	c := Default()
	require.Equal(t, 10*time.Second, c.RedoReadSleepDuration())
	require.Equal(t, 10*time.Second, c.CheckpointIntervalDuration())
}
