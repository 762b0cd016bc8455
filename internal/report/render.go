// Package report fills report templates from result data.
//
// A placeholder is either {{<category>-<field>}}, where category is one of
// Categories and field a key of that category's map, or one of
// NamedPlaceholders. Anything that does not resolve is copied through
// unchanged, so partial results still render.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	CategoryResult     = "result"
	CategoryStatistics = "statistics"

	openDelim  = "{{"
	closeDelim = "}}"
)

// Categories are the nested maps a remote summary provides.
var Categories = []string{CategoryResult, CategoryStatistics}

// NamedPlaceholders are filled from the invocation rather than from results.
var NamedPlaceholders = []string{
	"hostname",
	"port",
	"pathand",
	"concurrency",
	"response-header-server",
	"request-tls-protocol",
	"request-length",
}

var named = func() map[string]bool {
	m := make(map[string]bool, len(NamedPlaceholders))
	for _, n := range NamedPlaceholders {
		m[n] = true
	}
	return m
}()

// Render substitutes placeholders in a single pass over tmpl.
func Render(tmpl string, fields map[string]string, data map[string]map[string]any) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		i := strings.Index(rest, openDelim)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		rest = rest[i:]

		j := strings.Index(rest[len(openDelim):], closeDelim)
		if j < 0 {
			b.WriteString(rest)
			break
		}
		name := rest[len(openDelim) : len(openDelim)+j]
		token := rest[:len(openDelim)+j+len(closeDelim)]

		if v, ok := lookup(name, fields, data); ok {
			b.WriteString(v)
			rest = rest[len(token):]
			continue
		}
		// Unresolved: emit the opening braces and rescan after them, so a
		// stray "{{" does not swallow a following placeholder.
		b.WriteString(openDelim)
		rest = rest[len(openDelim):]
	}
	return b.String()
}

func lookup(name string, fields map[string]string, data map[string]map[string]any) (string, bool) {
	if named[name] {
		v, ok := fields[name]
		return v, ok
	}
	for _, cat := range Categories {
		key, ok := strings.CutPrefix(name, cat+"-")
		if !ok {
			continue
		}
		v, ok := data[cat][key]
		if !ok {
			return "", false
		}
		return FormatValue(v), true
	}
	return "", false
}

// FormatValue renders a decoded JSON value in its plain form.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}
