// Package infofile parses the declarative ini-like info files that
// describe themes, extensions, and layouts.
//
// The format is one assignment per line. Plain keys hold scalar strings,
// bracket paths build nested maps, and a trailing empty bracket appends
// to a list:
//
//	name = My Theme
//	settings[toggle_extension_css] = 1
//	stylesheets[all][] = css/layout.css
//
// Full-line comments start with ';' or '#'. Values may be single or
// double quoted. All scalar values are kept as strings; the accessor
// helpers interpret them on demand, matching the hosting platform's
// info-file semantics.
package infofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads an info file and returns its contents as a nested map.
// Scalar values are strings, bracket paths become map[string]any, and
// repeated empty-bracket keys accumulate into []any.
func Parse(r io.Reader) (map[string]any, error) {
	result := make(map[string]any)
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, ";") || strings.HasPrefix(text, "#") {
			continue
		}

		eq := strings.Index(text, "=")
		if eq < 0 {
			return nil, fmt.Errorf("line %d: missing '=' in %q", line, text)
		}

		key := strings.TrimSpace(text[:eq])
		value := unquote(strings.TrimSpace(text[eq+1:]))

		path, appendTo, err := splitKey(key)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if err := assign(result, path, value, appendTo); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ParseFile parses the info file at path.
func ParseFile(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// splitKey decomposes "a[b][c]" into its path segments. A trailing empty
// bracket pair marks list-append assignment.
func splitKey(key string) (path []string, appendTo bool, err error) {
	bracket := strings.Index(key, "[")
	if bracket < 0 {
		if key == "" {
			return nil, false, fmt.Errorf("empty key")
		}
		return []string{key}, false, nil
	}

	head := strings.TrimSpace(key[:bracket])
	if head == "" {
		return nil, false, fmt.Errorf("empty key before bracket in %q", key)
	}
	path = []string{head}

	rest := key[bracket:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, false, fmt.Errorf("malformed key %q", key)
		}
		close := strings.Index(rest, "]")
		if close < 0 {
			return nil, false, fmt.Errorf("unterminated bracket in key %q", key)
		}
		segment := strings.TrimSpace(rest[1:close])
		rest = rest[close+1:]
		if segment == "" {
			if rest != "" {
				return nil, false, fmt.Errorf("empty segment before end of key %q", key)
			}
			appendTo = true
			break
		}
		path = append(path, segment)
	}

	return path, appendTo, nil
}

// assign stores value at the bracket path, creating intermediate maps.
// A scalar already present at an intermediate step makes the file
// unparsable rather than being silently clobbered.
func assign(m map[string]any, path []string, value string, appendTo bool) error {
	for _, segment := range path[:len(path)-1] {
		next, ok := m[segment]
		if !ok {
			child := make(map[string]any)
			m[segment] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("key %q redefines scalar as map", segment)
		}
		m = child
	}

	last := path[len(path)-1]
	if !appendTo {
		m[last] = value
		return nil
	}

	switch existing := m[last].(type) {
	case nil:
		m[last] = []any{value}
	case []any:
		m[last] = append(existing, value)
	default:
		return fmt.Errorf("key %q mixes list and scalar assignment", last)
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// String walks the bracket path and returns the scalar found there.
func String(info map[string]any, path ...string) (string, bool) {
	v, ok := lookup(info, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool interprets the scalar at path as a boolean the way the hosting
// platform does: "1", "true", "yes", and "on" are true, everything else
// is false.
func Bool(info map[string]any, path ...string) (bool, bool) {
	s, ok := String(info, path...)
	if !ok {
		return false, false
	}
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, true
	default:
		return false, true
	}
}

// Strings returns the list of scalars accumulated at path. A single
// scalar is returned as a one-element list.
func Strings(info map[string]any, path ...string) []string {
	v, ok := lookup(info, path)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Map returns the nested map at path, or nil when absent or scalar.
func Map(info map[string]any, path ...string) map[string]any {
	v, ok := lookup(info, path)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

func lookup(info map[string]any, path []string) (any, bool) {
	var current any = info
	for _, segment := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
