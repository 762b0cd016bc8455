package ab

import (
	"net/url"
	"strconv"
	"strings"
)

// ParsedURL is the part of the target URL the project needs.
type ParsedURL struct {
	Scheme   string
	Hostname string
	Port     int // 0 when the URL has no explicit port
	PathAnd  string
}

// DefaultPort returns the implicit port of a scheme, or 0 if it has none.
func DefaultPort(scheme string) int {
	switch scheme {
	case "http":
		return 80
	case "https":
		return 443
	}
	return 0
}

// unquote strips at most one quote character from each end.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}

func parseTarget(raw string) (string, ParsedURL, error) {
	raw = unquote(raw)
	if raw == "" {
		return "", ParsedURL{}, malformed("URL is empty", nil)
	}
	if !hasScheme(raw) {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ParsedURL{}, malformed("invalid URL "+raw, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ParsedURL{}, malformed("URL has no hostname: "+raw, nil)
	}

	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", ParsedURL{}, malformed("invalid port in URL "+raw, err)
		}
	}

	rest := raw
	if n := len(u.Scheme) + len("://"); len(raw) >= n && strings.EqualFold(raw[:n], u.Scheme+"://") {
		rest = raw[n:]
	}
	segments := strings.Split(rest, "/")

	return raw, ParsedURL{
		Scheme:   u.Scheme,
		Hostname: host,
		Port:     port,
		PathAnd:  "/" + strings.Join(segments[1:], "/"),
	}, nil
}

// hasScheme reports whether raw starts with "scheme://". A "://" after the
// first '/', '?' or '#' belongs to the path or query.
func hasScheme(raw string) bool {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return false
	}
	end := strings.IndexAny(raw, "/?#")
	return end < 0 || i <= end
}
