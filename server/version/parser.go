package version

import (
	"encoding/json"
	"regexp"
	"time"
)

// Unknown is the sentinel for versions that could not be parsed.
const Unknown = "unknown"

var (
	// yt-dlp versions are date shaped, e.g. "2024.01.01"
	dateVersionRe = regexp.MustCompile(`(\d{4}\.\d{2}\.\d{2})`)
	// ffmpeg/ffprobe print "ffmpeg version n6.0-..." banners
	tokenVersionRe = regexp.MustCompile(`(?i)version\s+(\S+)`)
)

// ExtractBinaryVersion pulls a version string out of a tool's
// --version output. Dispatches on the binary kind; anything
// unrecognized yields Unknown.
func ExtractBinaryVersion(output, kind string) string {
	switch kind {
	case "yt-dlp":
		if m := dateVersionRe.FindStringSubmatch(output); m != nil {
			return m[1]
		}
	case "ffmpeg", "ffprobe":
		if m := tokenVersionRe.FindStringSubmatch(output); m != nil {
			return m[1]
		}
	}
	return Unknown
}

// ExtractReleaseTag pulls the tag name out of a release-feed JSON
// payload. Malformed payloads and payloads without a tag both yield
// ok == false.
func ExtractReleaseTag(payload []byte) (string, bool) {
	var release struct {
		TagName string `json:"tag_name"`
	}

	if err := json.Unmarshal(payload, &release); err != nil {
		return "", false
	}
	if release.TagName == "" {
		return "", false
	}

	return release.TagName, true
}

// UpdateCheckDue reports whether enough time elapsed since the last
// update check. Unparseable or future timestamps fail open: checking
// too often beats silently never checking.
func UpdateCheckDue(lastChecked string, interval time.Duration) bool {
	t, err := time.Parse(time.RFC3339, lastChecked)
	if err != nil {
		return true
	}

	elapsed := time.Since(t)
	if elapsed < 0 {
		return true
	}

	return elapsed >= interval
}
