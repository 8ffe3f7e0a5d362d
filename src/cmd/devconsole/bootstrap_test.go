package main

import (
	"testing"
	"time"

	"devconsole/src/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerArgs(t *testing.T) {
	t.Run("Quiet", func(t *testing.T) {
		args, err := loggerArgs(config.DefaultLogConfig(), true)
		require.NoError(t, err)
		assert.Equal(t, []string{"disable_file=true", "enable_stdout=false", "level=255"}, args)
	})

	t.Run("DefaultStderr", func(t *testing.T) {
		args, err := loggerArgs(config.DefaultLogConfig(), false)
		require.NoError(t, err)
		assert.Contains(t, args, "stdout_target=stderr")
		assert.Contains(t, args, "enable_stdout=true")
		assert.Contains(t, args, "disable_file=true")
		assert.NotContains(t, args, "name=devconsole")
	})

	t.Run("BothSplit", func(t *testing.T) {
		cfg := config.DefaultLogConfig()
		cfg.Output = "both"
		cfg.Level = "debug"
		cfg.Console.Target = "split"

		args, err := loggerArgs(cfg, false)
		require.NoError(t, err)
		assert.Contains(t, args, "stdout_split_mode=true")
		assert.Contains(t, args, "disable_file=false")
		assert.Contains(t, args, "directory=./log")
		assert.Contains(t, args, "retention_period_hrs=24.0")
	})

	t.Run("FileOnly", func(t *testing.T) {
		cfg := config.DefaultLogConfig()
		cfg.Output = "file"
		args, err := loggerArgs(cfg, false)
		require.NoError(t, err)
		assert.Contains(t, args, "enable_stdout=false")
		assert.Contains(t, args, "name=devconsole")
	})

	t.Run("Invalid", func(t *testing.T) {
		cfg := config.DefaultLogConfig()
		cfg.Output = "syslog"
		_, err := loggerArgs(cfg, false)
		assert.ErrorContains(t, err, "invalid log output mode")

		cfg = config.DefaultLogConfig()
		cfg.Level = "trace"
		_, err = loggerArgs(cfg, false)
		assert.ErrorContains(t, err, "invalid log level")
	})
}

func TestInitializeLogger(t *testing.T) {
	prev := logger
	t.Cleanup(func() { logger = prev })

	require.NoError(t, initializeLogger(config.Defaults(), true))
	require.NotNil(t, logger)
	logger.Info("msg", "started")
	assert.NoError(t, logger.Shutdown(time.Second))

	cfg := config.Defaults()
	cfg.Logging.Output = "syslog"
	assert.ErrorContains(t, initializeLogger(cfg, false), "invalid log output mode")
}
