package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/propship/internal/props"
)

// LoadFile reads a configuration file into flat dotted keys. Files ending in
// ".toml" are decoded as TOML; anything else is read as a properties file.
func LoadFile(path string) (Values, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read config file: %w", err)}
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return parseTOML(b)
	}
	return parseProperties(b, path)
}

func parseTOML(b []byte) (Values, error) {
	var doc map[string]any
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, &Error{Err: fmt.Errorf("decode toml: %w", err)}
	}
	values := Values{}
	flatten("", doc, values)
	return values, nil
}

// flatten turns nested tables into dotted keys.
func flatten(prefix string, doc map[string]any, out Values) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := doc[k].(type) {
		case map[string]any:
			flatten(key, v, out)
		case string:
			out[key] = v
		case int64:
			out[key] = strconv.FormatInt(v, 10)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		default:
			out[key] = fmt.Sprint(v)
		}
	}
}

// parseProperties reads a properties file. Unlike data files, a line is
// split at its first '=' or ':' so values may contain either delimiter.
func parseProperties(b []byte, path string) (Values, error) {
	values := Values{}
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || props.Classify(line) == props.Comment {
			continue
		}
		i := strings.IndexAny(line, "=:")
		if i < 0 {
			continue
		}
		values[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i+1:])
	}
	if err := sc.Err(); err != nil {
		return nil, &Error{Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return values, nil
}
