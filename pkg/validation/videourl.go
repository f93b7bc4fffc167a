package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// Hosts accepted for lecture videos. Anything else is rejected at creation
// time; read-time sanitization is the only other content protection.
var allowedVideoHosts = map[string]struct{}{
	"youtube.com":      {},
	"www.youtube.com":  {},
	"m.youtube.com":    {},
	"youtu.be":         {},
	"vimeo.com":        {},
	"www.vimeo.com":    {},
	"player.vimeo.com": {},
}

// ValidateVideoURL checks that raw is an absolute http(s) URL pointing at an
// allowed video host.
func ValidateVideoURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("video url is required")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("invalid video url: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("video url must use http or https")
	}

	host := strings.ToLower(parsed.Hostname())
	if _, ok := allowedVideoHosts[host]; !ok {
		return fmt.Errorf("video url host %q is not an allowed video provider", host)
	}

	return nil
}
