package delivery

import (
	"fmt"
	"net/url"
	"strings"
)

// DeriveSocketEndpoint guesses the socket endpoint of a target.
// The mapping is best-effort: http becomes ws, https becomes wss, and path is appended.
func DeriveSocketEndpoint(targetURL, path string) (string, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return "", fmt.Errorf("invalid target URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme for socket endpoint: %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("target URL has no host: %s", targetURL)
	}

	if path == "" {
		path = DefaultSocketPath
	}
	base := u.Path
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u.Path = base + strings.TrimPrefix(path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}

// OriginOf returns scheme://host of a URL, or "" if it cannot be parsed
func OriginOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
