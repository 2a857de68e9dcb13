package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader maps prefixed environment variables onto configuration paths.
//
// Explicit mappings win; any other PREFIX_SECTION_SOME_NAME variable maps
// to section.someName.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader for prefix, which includes the trailing
// underscore (for example "TREEDROP_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
		environ: os.Environ,
	}
}

// AddMapping maps envVar to a dotted configuration path.
func (l *EnvLoader) AddMapping(envVar, path string) {
	l.mapping[envVar] = path
}

// SetEnviron replaces the environment source.
func (l *EnvLoader) SetEnviron(environ func() []string) {
	l.environ = environ
}

// Load returns the prefixed variables as a nested map. Empty values count
// as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	out := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(out, path, parseValue(value))
	}
	return out, nil
}

// envToPath converts PREFIX_DRAG_INSERT_MARGIN to drag.insertMargin.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	if name == "" {
		return ""
	}
	parts := strings.Split(strings.ToLower(name), "_")
	if len(parts) == 1 {
		return parts[0]
	}

	var b strings.Builder
	b.WriteString(parts[1])
	for _, p := range parts[2:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return parts[0] + "." + b.String()
}

// parseValue converts booleans and numbers; everything else, including
// durations, stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// setByPath sets value at a dotted path, creating intermediate maps.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
