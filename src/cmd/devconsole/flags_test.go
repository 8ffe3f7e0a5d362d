package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	var errOut bytes.Buffer
	fc, err := parseFlags([]string{
		"-config", "dev.toml",
		"-listen", "127.0.0.1:9000",
		"-capacity", "50",
		"-color", "never",
		"app.js", "more.js",
	}, &errOut)
	require.NoError(t, err)

	assert.Equal(t, "dev.toml", fc.ConfigFile)
	assert.Equal(t, []string{"app.js", "more.js"}, fc.Scripts)
	assert.Equal(t, []string{
		"--server.enabled=true",
		"--server.host=127.0.0.1",
		"--server.port=9000",
		"--panel.capacity=50",
		"--terminal.color=never",
	}, fc.ConfigArgs())
}

func TestParseFlags_NoOverrides(t *testing.T) {
	fc, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, fc.ConfigArgs())
	assert.Empty(t, fc.Scripts)
}

func TestParseFlags_ListenAllInterfaces(t *testing.T) {
	fc, err := parseFlags([]string{"-listen", ":8081", "-no-terminal", "-log-level", "DEBUG"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--server.enabled=true",
		"--server.host=0.0.0.0",
		"--server.port=8081",
		"--logging.level=debug",
		"--terminal.enabled=false",
	}, fc.ConfigArgs())
}

func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"log output", []string{"-log-output", "syslog"}, "invalid log-output"},
		{"log level", []string{"-log-level", "trace"}, "invalid log-level"},
		{"color", []string{"-color", "rainbow"}, "invalid color"},
		{"capacity", []string{"-capacity", "-1"}, "invalid capacity"},
		{"listen no port", []string{"-listen", "localhost"}, "invalid listen address"},
		{"listen bad port", []string{"-listen", "localhost:http"}, "invalid listen port"},
		{"unknown flag", []string{"-bogus"}, "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
