package intercept

import (
	"bytes"
	"errors"
	stdlog "log"
	"strings"
	"testing"
	"time"

	"devconsole/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 5, 0, 0, time.Local)
}

func newTestConsole() (*Console, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return NewConsole(&stdout, &stderr), &stdout, &stderr
}

func TestInstall_DeliversAndForwards(t *testing.T) {
	c, stdout, _ := newTestConsole()
	var rec core.Recorder

	i, err := Install(c, rec.Sink(), WithClock(fixedClock))
	require.NoError(t, err)
	defer i.Uninstall()

	c.Log("hi", map[string]int{"a": 1})

	require.Len(t, rec.Records, 1)
	assert.Equal(t, core.LogRecord{
		Timestamp: "09:05",
		Category:  core.CategoryLog,
		Text:      "hi {\n  \"a\": 1\n}",
	}, rec.Records[0])
	assert.Equal(t, "hi map[a:1]\n", stdout.String(), "original entry point receives unconverted args")
}

func TestInstall_EachChannelOncePerCall(t *testing.T) {
	testCases := []struct {
		name     string
		call     func(c *Console)
		category core.Category
		stderr   bool
	}{
		{name: "Log", call: func(c *Console) { c.Log("a", 1) }, category: core.CategoryLog},
		{name: "Warn", call: func(c *Console) { c.Warn("a", 1) }, category: core.CategoryWarn, stderr: true},
		{name: "Error", call: func(c *Console) { c.Error("a", 1) }, category: core.CategoryError, stderr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, stdout, stderr := newTestConsole()
			var rec core.Recorder

			i, err := Install(c, rec.Sink(), WithClock(fixedClock))
			require.NoError(t, err)
			defer i.Uninstall()

			tc.call(c)

			require.Len(t, rec.Records, 1)
			assert.Equal(t, tc.category, rec.Records[0].Category)
			assert.Equal(t, "a 1", rec.Records[0].Text)
			if tc.stderr {
				assert.Equal(t, "a 1\n", stderr.String())
				assert.Empty(t, stdout.String())
			} else {
				assert.Equal(t, "a 1\n", stdout.String())
				assert.Empty(t, stderr.String())
			}
		})
	}
}

func TestInstall_Twice(t *testing.T) {
	c, _, _ := newTestConsole()
	var rec core.Recorder

	first, err := Install(c, rec.Sink())
	require.NoError(t, err)
	defer first.Uninstall()

	second, err := Install(c, rec.Sink())
	assert.ErrorIs(t, err, ErrAlreadyInstalled)
	assert.Nil(t, second)

	c.Log("once")
	assert.Len(t, rec.Records, 1, "no nested wrappers")
}

func TestReinstall(t *testing.T) {
	c, _, _ := newTestConsole()
	var oldRec, newRec core.Recorder

	first, err := Install(c, oldRec.Sink())
	require.NoError(t, err)

	second, err := Reinstall(c, newRec.Sink())
	require.NoError(t, err)
	defer second.Uninstall()

	c.Warn("moved")
	assert.False(t, first.Installed())
	assert.Empty(t, oldRec.Records)
	require.Len(t, newRec.Records, 1)
	assert.Equal(t, "moved", newRec.Records[0].Text)
}

func TestUninstall_RestoresOriginals(t *testing.T) {
	c, stdout, _ := newTestConsole()
	var rec core.Recorder

	i, err := Install(c, rec.Sink())
	require.NoError(t, err)
	assert.True(t, c.Installed())

	i.Uninstall()
	i.Uninstall()
	assert.False(t, c.Installed())

	c.Log("after")
	i.ReportError(ErrorEvent{Message: "ignored"})
	assert.Empty(t, rec.Records)
	assert.Equal(t, "after\n", stdout.String())

	again, err := Install(c, rec.Sink())
	require.NoError(t, err)
	again.Uninstall()
}

func TestSinkFailureIsIsolated(t *testing.T) {
	c, stdout, _ := newTestConsole()
	calls := 0
	sink := func(string, core.Category, string) {
		calls++
		panic("sink exploded")
	}

	i, err := Install(c, sink)
	require.NoError(t, err)
	defer i.Uninstall()

	assert.NotPanics(t, func() {
		c.Log("first")
		c.Error("second")
	})
	assert.Equal(t, 2, calls)
	assert.Equal(t, "first\n", stdout.String(), "host logging keeps working")

	stats := i.Stats()
	assert.Equal(t, uint64(0), stats.Delivered)
	assert.Equal(t, uint64(2), stats.Dropped)
}

func TestReportError(t *testing.T) {
	c, _, _ := newTestConsole()
	var rec core.Recorder

	i, err := Install(c, rec.Sink(), WithClock(fixedClock))
	require.NoError(t, err)
	defer i.Uninstall()

	i.ReportError(ErrorEvent{Message: "x is not defined", File: "app.js", Line: 12, Col: 4})

	require.Len(t, rec.Records, 1)
	assert.Equal(t, core.CategoryError, rec.Records[0].Category)
	assert.Equal(t, "Uncaught Error: x is not defined at app.js:12:4", rec.Records[0].Text)
}

func TestGuard(t *testing.T) {
	c, _, _ := newTestConsole()
	var rec core.Recorder

	i, err := Install(c, rec.Sink())
	require.NoError(t, err)
	defer i.Uninstall()

	err = i.Guard(func() {
		panic("kaboom")
	})

	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "kaboom", perr.Value)
	assert.True(t, strings.HasSuffix(perr.Event.File, "interceptor_test.go"), perr.Event.File)
	assert.Greater(t, perr.Event.Line, 0)

	require.Len(t, rec.Records, 1)
	assert.Regexp(t, `^Uncaught Error: kaboom at .*interceptor_test\.go:\d+:0$`, rec.Records[0].Text)

	assert.NoError(t, i.Guard(func() {}))
	assert.Len(t, rec.Records, 1)
}

func TestRecover(t *testing.T) {
	c, _, _ := newTestConsole()

	t.Run("Repanics", func(t *testing.T) {
		var rec core.Recorder
		i, err := Install(c, rec.Sink())
		require.NoError(t, err)
		defer i.Uninstall()

		assert.PanicsWithValue(t, "bad state", func() {
			defer i.Recover()
			panic("bad state")
		})
		require.Len(t, rec.Records, 1)
		assert.Contains(t, rec.Records[0].Text, "Uncaught Error: bad state at ")
	})

	t.Run("Swallows", func(t *testing.T) {
		var rec core.Recorder
		i, err := Install(c, rec.Sink(), WithSwallowPanics())
		require.NoError(t, err)
		defer i.Uninstall()

		assert.NotPanics(t, func() {
			defer i.Recover()
			var m map[string]int
			m["x"] = 1
		})
		require.Len(t, rec.Records, 1)
		assert.Contains(t, rec.Records[0].Text, "assignment to entry in nil map")
	})
}

func TestGo_ReportsRejections(t *testing.T) {
	c, _, _ := newTestConsole()
	var rec core.Recorder

	i, err := Install(c, rec.Sink(), WithClock(fixedClock))
	require.NoError(t, err)
	defer i.Uninstall()

	i.Go(func() error { return errors.New("timeout") })
	i.Wait()
	i.Go(func() error { return nil })
	i.Wait()
	i.Go(func() error { panic("worker died") })
	i.Wait()

	require.Len(t, rec.Records, 2)
	assert.Equal(t, core.LogRecord{Timestamp: "09:05", Category: core.CategoryError, Text: "Unhandled Promise Rejection: timeout"}, rec.Records[0])
	assert.Equal(t, "Unhandled Promise Rejection: worker died", rec.Records[1].Text)
}

func TestStdLogCapture(t *testing.T) {
	var out bytes.Buffer
	prevOut, prevFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&out)
	stdlog.SetFlags(0)
	defer func() {
		stdlog.SetOutput(prevOut)
		stdlog.SetFlags(prevFlags)
	}()

	c, _, _ := newTestConsole()
	var rec core.Recorder

	i, err := Install(c, rec.Sink(), WithStdLog())
	require.NoError(t, err)

	_, err = Install(NewConsole(nil, nil), rec.Sink(), WithStdLog())
	assert.ErrorIs(t, err, ErrStdLogCaptured)

	stdlog.Print("hello")
	stdlog.Print("[WARN] disk nearly full")
	stdlog.Print("ERROR: no route")
	stdlog.Print("no errors found")

	require.Len(t, rec.Records, 4)
	assert.Equal(t, "hello", rec.Records[0].Text)
	assert.Equal(t, core.CategoryLog, rec.Records[0].Category)
	assert.Equal(t, core.CategoryWarn, rec.Records[1].Category)
	assert.Equal(t, core.CategoryError, rec.Records[2].Category)
	assert.Equal(t, core.CategoryLog, rec.Records[3].Category)
	assert.Equal(t, "hello\n[WARN] disk nearly full\nERROR: no route\nno errors found\n", out.String())

	i.Uninstall()
	assert.Same(t, &out, stdlog.Writer())
}

func TestPackageDefault(t *testing.T) {
	var stdout bytes.Buffer
	prev := Default
	Default = NewConsole(&stdout, nil)
	defer func() { Default = prev }()

	var rec core.Recorder
	i, err := Install(Default, rec.Sink())
	require.NoError(t, err)
	defer i.Uninstall()

	Log("via", "package")
	Warn("w")
	Error("e")

	require.Len(t, rec.Records, 3)
	assert.Equal(t, "via package\n", stdout.String())
}

func TestNewConsoleFuncs(t *testing.T) {
	var got []any
	c := NewConsoleFuncs(func(args ...any) { got = args }, nil, nil)
	var rec core.Recorder

	i, err := Install(c, rec.Sink())
	require.NoError(t, err)
	defer i.Uninstall()

	assert.NotPanics(t, func() { c.Warn("no native warn") })
	c.Log(1, "two")
	assert.Equal(t, []any{1, "two"}, got)
	assert.Len(t, rec.Records, 2)
}

type nilReceiverError struct{ code int }

func (e *nilReceiverError) Error() string { return "code " + string(rune('0'+e.code)) }

type panickyStringer struct{}

func (panickyStringer) String() string { panic("bad String") }

func TestInstall_HostileArgumentsStillForward(t *testing.T) {
	c, stdout, _ := newTestConsole()
	var rec core.Recorder

	i, err := Install(c, rec.Sink(), WithClock(fixedClock))
	require.NoError(t, err)
	defer i.Uninstall()

	var typedNil *nilReceiverError
	assert.NotPanics(t, func() {
		c.Log("value:", typedNil)
		c.Log(panickyStringer{})
	})

	require.Len(t, rec.Records, 2)
	assert.Equal(t, "value: null", rec.Records[0].Text)
	assert.Equal(t, "%!v(PANIC=String method: bad String)", rec.Records[1].Text)
	assert.Equal(t, "value: <nil>\n%!v(PANIC=String method: bad String)\n", stdout.String(),
		"original entry point still runs")
}
