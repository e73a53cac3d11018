package scheduler

import (
	"fmt"
	"net/url"
	"strings"
)

// Flattened playlist entries sometimes carry only a bare video id.
// The id alone is not fetchable, so a canonical watch URL is
// synthesized from the domain family of the job's own URL. The lookup
// table keeps the one fragile heuristic of the whole design in a
// single, independently testable place.
var watchURLTemplates = map[string]string{
	"youtube.com": "https://www.youtube.com/watch?v=%s",
	"youtu.be":    "https://www.youtube.com/watch?v=%s",
}

// ResolveMemberURL determines the fetch URL for a discovered member.
// It returns false when the member cannot be resolved at all, in which
// case no fetch subprocess should be spawned for it.
func ResolveMemberURL(jobURL string, m Member) (string, bool) {
	for _, candidate := range []string{m.URL, m.WebpageURL} {
		if isAbsoluteURL(candidate) {
			return candidate, true
		}
	}

	id := m.Id
	if id == "" {
		id = m.URL
	}
	if id == "" {
		return "", false
	}
	if isAbsoluteURL(id) {
		return id, true
	}

	tmpl, ok := watchTemplateFor(jobURL)
	if !ok {
		return "", false
	}

	return fmt.Sprintf(tmpl, id), true
}

func isAbsoluteURL(s string) bool {
	return strings.Contains(s, "://")
}

func watchTemplateFor(jobURL string) (string, bool) {
	u, err := url.Parse(jobURL)
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	for domain, tmpl := range watchURLTemplates {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return tmpl, true
		}
	}

	return "", false
}
