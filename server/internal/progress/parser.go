package progress

import (
	"regexp"
	"strconv"
	"strings"
)

// The output grammar of yt-dlp is an unversioned, line-oriented
// protocol. Each matcher below targets one textual cue; the order is
// significant since some cues contain others as substrings (e.g. an
// already-downloaded line also contains the [download] tag).

var (
	alreadyDownloadedRe = regexp.MustCompile(`\[download\]\s+(.+)\s+has already been downloaded`)
	playlistRe          = regexp.MustCompile(`Downloading playlist: (.+)`)
	itemCountRe         = regexp.MustCompile(`Downloading item (\d+) of (\d+)`)
	formatNoiseRe       = regexp.MustCompile(`Downloading \d+ format\(s\):`)
	parallelIndexRe     = regexp.MustCompile(`\[download\]\s+\[(\d+)\]`)
	percentRe           = regexp.MustCompile(`(\d+\.?\d*)%`)
	sizeRe              = regexp.MustCompile(`of\s+~?\s*([0-9.]+\s*[KMG]iB)`)
	speedRe             = regexp.MustCompile(`at\s+([0-9.]+\s*[KMG]iB/s)`)
	etaRe               = regexp.MustCompile(`ETA\s+([\d:]+)`)
	downloadPathRe      = regexp.MustCompile(`\[download\]\s+(?:Destination:\s+)?(.+)`)
	extractDestRe       = regexp.MustCompile(`\[ExtractAudio\] Destination: (.+)`)
	mergerDestRe        = regexp.MustCompile(`\[Merger\] Merging formats into ["'](.+)["']`)
	mediaExtRe          = regexp.MustCompile(`\.(webm|mp4|m4a|mkv|mp3|flv)$`)
)

var mediaExtensions = []string{".webm", ".mp4", ".m4a", ".mkv", ".mp3", ".flv"}

// Parse maps one line of downloader output to at most one Event.
// It is total: malformed lines never produce an error, they either
// degrade to "Unknown"/zero fields or yield nil.
func Parse(line string) Event {
	if strings.Contains(line, "has already been downloaded") {
		return Complete{
			Reason: ReasonAlreadyDownloaded,
			Title:  titleFromPath(firstGroup(alreadyDownloadedRe, line)),
		}
	}

	if strings.Contains(line, "Downloading playlist:") {
		name := firstGroup(playlistRe, line)
		if name == "" {
			name = "Unknown"
		}
		return Playlist{Name: name}
	}

	if strings.Contains(line, "Downloading item") {
		m := itemCountRe.FindStringSubmatch(line)
		var current, total int
		if m != nil {
			current, _ = strconv.Atoi(m[1])
			total, _ = strconv.Atoi(m[2])
		}
		return ItemCount{Current: current, Total: total}
	}

	// Noise markers, skipped so they never reach the generic branches.
	if formatNoiseRe.MatchString(line) || strings.Contains(line, "Extracting URL:") {
		return nil
	}

	if strings.Contains(line, "[download]") && strings.Contains(line, "%") {
		ev := Progress{
			Size:  firstGroup(sizeRe, line),
			Speed: firstGroup(speedRe, line),
			ETA:   firstGroup(etaRe, line),
		}
		if m := parallelIndexRe.FindStringSubmatch(line); m != nil {
			ev.Index, _ = strconv.Atoi(m[1])
		}
		if m := percentRe.FindStringSubmatch(line); m != nil {
			ev.Percent, _ = strconv.ParseFloat(m[1], 64)
		}
		return ev
	}

	if strings.Contains(line, "[download]") && (strings.Contains(line, "Destination:") || hasMediaExtension(line)) {
		path := firstGroup(downloadPathRe, line)
		if !mediaExtRe.MatchString(path) {
			return nil
		}
		return ItemTitle{Title: titleFromPath(path)}
	}

	if strings.Contains(line, "[ExtractAudio] Destination:") {
		return Destination{
			FileName: baseName(firstGroup(extractDestRe, line)),
			Stage:    StageExtracting,
		}
	}

	if strings.Contains(line, "[Merger] Merging formats into") {
		return Destination{
			FileName: baseName(firstGroup(mergerDestRe, line)),
			Stage:    StageMerging,
		}
	}

	if strings.Contains(line, "[ExtractAudio]") || strings.Contains(line, "[Merger]") || strings.Contains(line, "[Postprocessor]") {
		return Processing{}
	}

	if strings.Contains(line, "Deleting original file") {
		return Complete{Reason: ReasonCleanup}
	}

	if strings.Contains(line, "Finished downloading playlist") {
		return Complete{Reason: ReasonPlaylistComplete}
	}

	if strings.Contains(line, "ERROR:") {
		_, msg, _ := strings.Cut(line, "ERROR:")
		return Error{Message: strings.TrimSpace(msg)}
	}

	return nil
}

func firstGroup(re *regexp.Regexp, line string) string {
	if m := re.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

func hasMediaExtension(line string) bool {
	for _, ext := range mediaExtensions {
		if strings.Contains(line, ext) {
			return true
		}
	}
	return false
}

// baseName is the last path segment, accepting both separator styles
// since the downloader echoes whatever the OS handed it.
func baseName(path string) string {
	if path == "" {
		return "Unknown"
	}
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return "Unknown"
	}
	return path
}

// titleFromPath recovers a display title from a destination path by
// taking the basename and stripping a known media extension.
func titleFromPath(path string) string {
	name := baseName(path)
	return mediaExtRe.ReplaceAllString(name, "")
}
