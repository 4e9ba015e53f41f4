package config

import (
	"strconv"
	"strings"
	"time"
)

// Values is a flat set of dotted configuration keys.
type Values map[string]string

// Merge copies every entry of o into v, replacing existing keys.
func (v Values) Merge(o Values) {
	for k, val := range o {
		v[k] = val
	}
}

// configSetter applies Values to typed fields. The first failure is kept in
// err and later calls become no-ops.
type configSetter struct {
	values Values
	prefix string
	err    error
}

func newConfigSetter(values Values, app string) *configSetter {
	return &configSetter{values: values, prefix: app + "."}
}

func (s *configSetter) lookup(name string, required bool) (string, string, bool) {
	key := s.prefix + name
	if s.err != nil {
		return key, "", false
	}
	raw, ok := s.values[key]
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		if required {
			s.err = keyError(key, "required key is missing")
		}
		return key, "", false
	}
	return key, raw, true
}

// setString sets dst if the key is present.
func (s *configSetter) setString(name string, dst *string, required bool) {
	if _, raw, ok := s.lookup(name, required); ok {
		*dst = raw
	}
}

// setInt parses an integer if the key is present.
func (s *configSetter) setInt(name string, dst *int, required bool) {
	key, raw, ok := s.lookup(name, required)
	if !ok {
		return
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		s.err = keyError(key, "%q is not an integer", raw)
		return
	}
	*dst = i
}

// setMillis parses an integer number of milliseconds if the key is present.
func (s *configSetter) setMillis(name string, dst *time.Duration, required bool) {
	key, raw, ok := s.lookup(name, required)
	if !ok {
		return
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		s.err = keyError(key, "%q is not a whole number of milliseconds", raw)
		return
	}
	*dst = time.Duration(ms) * time.Millisecond
}
