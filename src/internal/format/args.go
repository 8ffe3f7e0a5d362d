// FILE: src/internal/format/args.go
package format

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/segmentio/encoding/json"
)

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Args converts every argument with Arg and joins them with single spaces
func Args(args ...any) string {
	switch len(args) {
	case 0:
		return ""
	case 1:
		return Arg(args[0])
	}

	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Arg(a)
	}
	return strings.Join(parts, " ")
}

// Arg converts a single console argument to display text.
// Structured values (maps, slices, arrays, structs and pointers to them) are
// pretty-printed as two-space indented JSON; everything else keeps its native
// string form. A panicking Error or String method falls back to fmt's
// rendering of the value, so conversion never panics.
func Arg(v any) (text string) {
	if v == nil || isNilPointer(v) {
		return "null"
	}
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprint(v)
		}
	}()

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}

	if structured(reflect.ValueOf(v)) {
		if text, ok := prettyJSON(v); ok {
			return text
		}
	}
	return fmt.Sprint(v)
}

// Native converts a value to its plain string form without JSON encoding
func Native(v any) (text string) {
	if v == nil || isNilPointer(v) {
		return "null"
	}
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprint(v)
		}
	}()

	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprint(v)
	}
}

// isNilPointer reports a typed nil pointer, e.g. a nil *T stored in an error
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func structured(rv reflect.Value) bool {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	default:
		return false
	}
}

func prettyJSON(v any) (string, bool) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer bufferPool.Put(buf)
	buf.Reset()

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", false
	}
	return strings.TrimSuffix(buf.String(), "\n"), true
}
