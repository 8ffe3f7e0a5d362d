package jsruntime

import (
	"bytes"
	"testing"
	"time"

	"devconsole/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 5, 0, 0, time.Local)
}

type testPage struct {
	*Page
	stdout bytes.Buffer
	stderr bytes.Buffer
	rec    core.Recorder
	hooks  *Interceptor
}

func newTestPage(t *testing.T) *testPage {
	t.Helper()
	tp := &testPage{}
	page, err := NewPage(Options{Stdout: &tp.stdout, Stderr: &tp.stderr})
	require.NoError(t, err)
	tp.Page = page

	hooks, err := Install(page, tp.rec.Sink(), WithClock(fixedClock))
	require.NoError(t, err)
	tp.hooks = hooks
	return tp
}

func TestConsoleCapture(t *testing.T) {
	tp := newTestPage(t)
	defer tp.hooks.Uninstall()

	_, err := tp.Run("page.js", `console.log("hi", {a: 1});`)
	require.NoError(t, err)

	require.Len(t, tp.rec.Records, 1)
	assert.Equal(t, core.LogRecord{
		Timestamp: "09:05",
		Category:  core.CategoryLog,
		Text:      "hi {\n  \"a\": 1\n}",
	}, tp.rec.Records[0])
	assert.Contains(t, tp.stdout.String(), "hi", "original console.log still runs")
}

func TestConsoleCapture_Channels(t *testing.T) {
	testCases := []struct {
		name     string
		script   string
		category core.Category
		stderr   bool
	}{
		{name: "Log", script: `console.log("m")`, category: core.CategoryLog},
		{name: "Warn", script: `console.warn("m")`, category: core.CategoryWarn, stderr: true},
		{name: "Error", script: `console.error("m")`, category: core.CategoryError, stderr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tp := newTestPage(t)
			defer tp.hooks.Uninstall()

			_, err := tp.Run("page.js", tc.script)
			require.NoError(t, err)

			require.Len(t, tp.rec.Records, 1)
			assert.Equal(t, tc.category, tp.rec.Records[0].Category)
			assert.Equal(t, "m", tp.rec.Records[0].Text)
			if tc.stderr {
				assert.Equal(t, "m\n", tp.stderr.String())
			} else {
				assert.Equal(t, "m\n", tp.stdout.String())
			}
		})
	}
}

func TestArgumentConversion(t *testing.T) {
	tp := newTestPage(t)
	defer tp.hooks.Uninstall()

	_, err := tp.Run("page.js", `
console.log(undefined, null, 1.5, "s", true);
console.log([1, 2]);
console.log(function f() { return 1 });
var cyclic = {}; cyclic.self = cyclic;
console.log(cyclic);
`)
	require.NoError(t, err)

	require.Len(t, tp.rec.Records, 4)
	assert.Equal(t, "undefined null 1.5 s true", tp.rec.Records[0].Text)
	assert.Equal(t, "[\n  1,\n  2\n]", tp.rec.Records[1].Text)
	assert.Equal(t, "function f() { return 1 }", tp.rec.Records[2].Text)
	assert.Equal(t, "[object Object]", tp.rec.Records[3].Text)
}

func TestUncaughtException(t *testing.T) {
	tp := newTestPage(t)
	defer tp.hooks.Uninstall()

	_, err := tp.Run("app.js", "var x = 1;\nthrow new Error('boom');")
	require.Error(t, err)

	require.Len(t, tp.rec.Records, 1)
	assert.Equal(t, core.CategoryError, tp.rec.Records[0].Category)
	assert.Regexp(t, `^Uncaught Error: boom at app\.js:2:\d+$`, tp.rec.Records[0].Text)

	_, err = tp.Run("ref.js", "missingFn();")
	require.Error(t, err)
	require.Len(t, tp.rec.Records, 2)
	assert.Regexp(t, `^Uncaught Error: missingFn is not defined at ref\.js:1:\d+$`, tp.rec.Records[1].Text)

	_, err = tp.Run("str.js", `throw "plain";`)
	require.Error(t, err)
	require.Len(t, tp.rec.Records, 3)
	assert.Regexp(t, `^Uncaught Error: plain at str\.js:1:\d+$`, tp.rec.Records[2].Text)
}

func TestUnhandledRejection(t *testing.T) {
	tp := newTestPage(t)
	defer tp.hooks.Uninstall()

	_, err := tp.Run("async.js", `
Promise.reject(new Error("nope"));
Promise.reject(1).catch(function () {});
new Promise(function (resolve, reject) { reject("late"); });
`)
	require.NoError(t, err)

	require.Len(t, tp.rec.Records, 2)
	assert.Equal(t, core.LogRecord{Timestamp: "09:05", Category: core.CategoryError, Text: "Unhandled Promise Rejection: Error: nope"}, tp.rec.Records[0])
	assert.Equal(t, "Unhandled Promise Rejection: late", tp.rec.Records[1].Text)
}

func TestInstallTwice(t *testing.T) {
	tp := newTestPage(t)
	defer tp.hooks.Uninstall()

	second, err := Install(tp.Page, tp.rec.Sink())
	assert.ErrorIs(t, err, ErrAlreadyInstalled)
	assert.Nil(t, second)

	_, err = tp.Run("page.js", `console.log("once")`)
	require.NoError(t, err)
	assert.Len(t, tp.rec.Records, 1)
}

func TestUninstall(t *testing.T) {
	tp := newTestPage(t)
	tp.hooks.Uninstall()
	tp.hooks.Uninstall()
	assert.False(t, tp.hooks.Installed())

	_, err := tp.Run("page.js", `console.log("quiet"); Promise.reject(1);`)
	require.NoError(t, err)
	_, err = tp.Run("page.js", `throw new Error("x")`)
	require.Error(t, err)

	assert.Empty(t, tp.rec.Records)
	assert.Equal(t, "quiet\n", tp.stdout.String())

	again, err := Install(tp.Page, tp.rec.Sink())
	require.NoError(t, err)
	again.Uninstall()
}

func TestSinkFailureIsIsolated(t *testing.T) {
	page, err := NewPage(Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	hooks, err := Install(page, func(string, core.Category, string) { panic("sink exploded") })
	require.NoError(t, err)
	defer hooks.Uninstall()

	v, err := page.Run("page.js", `console.log("a"); console.error("b"); 42`)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.ToInteger())
}

func TestSetGlobal(t *testing.T) {
	tp := newTestPage(t)
	defer tp.hooks.Uninstall()

	require.NoError(t, tp.Set("greeting", "hello"))
	_, err := tp.Run("page.js", `console.log(greeting)`)
	require.NoError(t, err)
	assert.Equal(t, "hello", tp.rec.Last().Text)
}
