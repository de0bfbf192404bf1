// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.16
//

package gorinex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "gorinex.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(body), 0o644))
	return fn
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultHatanakaOrder, cfg.Hatanaka.Order)
	assert.Equal(t, "", cfg.Hatanaka.Version)
	assert.Equal(t, DefaultProducer, cfg.ProducerID())
	assert.Equal(t, DefaultProducer, Config{}.ProducerID())
}

func TestLoadConfig(t *testing.T) {
	fn := writeConfig(t, `
producer: tsk-archiver-v2.0
log_level: 2
hatanaka:
  version: "3.0"
`)
	cfg, err := LoadConfig(fn)
	require.NoError(t, err)
	assert.Equal(t, Producer{Name: "tsk-archiver", Version: "2.0"}, cfg.ProducerID())
	assert.Equal(t, 2, cfg.LogLevel)
	assert.Equal(t, "3.0", cfg.Hatanaka.Version)

	// Absent keys keep their defaults
	assert.Equal(t, DefaultHatanakaOrder, cfg.Hatanaka.Order)
}

func TestLoadConfigErrors(t *testing.T) {
	var testData = []struct {
		description string
		body        string
	}{
		{"zero order", "hatanaka:\n  order: 0\n"},
		{"unknown crinex version", "hatanaka:\n  version: \"2.0\"\n"},
		{"not yaml", "hatanaka: [\n"},
	}

	for _, td := range testData {
		_, err := LoadConfig(writeConfig(t, td.body))
		assert.Error(t, err, td.description)
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
