package format

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pathError struct{ path string }

func (e *pathError) Error() string { return "bad path " + e.path }

type brokenStringer struct{}

func (brokenStringer) String() string { panic("bad String") }

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestArg(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "String", value: "hi", expected: "hi"},
		{name: "Int", value: 42, expected: "42"},
		{name: "Float", value: 1.5, expected: "1.5"},
		{name: "Bool", value: true, expected: "true"},
		{name: "Nil", value: nil, expected: "null"},
		{name: "NilPointer", value: (*point)(nil), expected: "null"},
		{name: "Error", value: errors.New("disk full"), expected: "disk full"},
		{name: "Stringer", value: 1500 * time.Millisecond, expected: "1.5s"},
		{name: "Bytes", value: []byte("raw"), expected: "raw"},
		{name: "Map", value: map[string]int{"a": 1}, expected: "{\n  \"a\": 1\n}"},
		{name: "Slice", value: []int{1, 2}, expected: "[\n  1,\n  2\n]"},
		{name: "EmptyMap", value: map[string]int{}, expected: "{}"},
		{name: "Struct", value: point{X: 1, Y: 2}, expected: "{\n  \"x\": 1,\n  \"y\": 2\n}"},
		{name: "StructPointer", value: &point{X: 3}, expected: "{\n  \"x\": 3,\n  \"y\": 0\n}"},
		{name: "NoHTMLEscape", value: map[string]string{"q": "a<b"}, expected: "{\n  \"q\": \"a<b\"\n}"},
		{name: "TypedNilError", value: error((*pathError)(nil)), expected: "null"},
		{name: "PanickingStringer", value: brokenStringer{}, expected: "%!v(PANIC=String method: bad String)"},
		{name: "UnencodableFallsBack", value: map[string]any{"ch": make(chan int)}, expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Arg(tc.value)
			if tc.name == "UnencodableFallsBack" {
				assert.Contains(t, got, "map[ch:")
				return
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNative_NeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "null", Native((*pathError)(nil)))
		assert.Equal(t, "%!v(PANIC=String method: bad String)", Native(brokenStringer{}))
	})
	assert.Equal(t, "bad path /tmp", Native(&pathError{path: "/tmp"}))
}

func TestArgs(t *testing.T) {
	t.Run("JoinsWithSingleSpace", func(t *testing.T) {
		assert.Equal(t, "a b 3", Args("a", "b", 3))
	})

	t.Run("PrettyPrintsObjects", func(t *testing.T) {
		assert.Equal(t, "hi {\n  \"a\": 1\n}", Args("hi", map[string]int{"a": 1}))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, "", Args())
	})

	t.Run("KeepsEmptyStrings", func(t *testing.T) {
		assert.Equal(t, "a  b", Args("a", "", "b"))
	})
}

func TestFailureTexts(t *testing.T) {
	assert.Equal(t, "Uncaught Error: boom at app.js:3:9", UncaughtError("boom", "app.js", 3, 9))
	assert.Equal(t, "Unhandled Promise Rejection: timeout", UnhandledRejection(errors.New("timeout")))
	assert.Equal(t, "Unhandled Promise Rejection: 7", UnhandledRejection(7))
}

func TestLine(t *testing.T) {
	assert.Equal(t, "09:05 ERROR boom", Line("09:05", "error", "boom"))
	assert.Equal(t, "09:05 DEBUG x", Line("09:05", "debug", "x"))
	assert.Equal(t, "09:05 plain", Line("09:05", "", "plain"))
}
