package version

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"time"
)

const defaultReleaseFeedURL = "https://api.github.com/repos/yt-dlp/yt-dlp/releases/latest"

// Manager probes the provisioned binaries for their versions and the
// release feed for the latest downloader tag.
type Manager struct {
	store          *Store
	feedURL        string
	checkInterval  time.Duration
	downloaderPath string
	ffmpegPath     string
	ffprobePath    string
}

func NewManager(store *Store, feedURL string, checkInterval time.Duration, downloaderPath, ffmpegPath, ffprobePath string) *Manager {
	if feedURL == "" {
		feedURL = defaultReleaseFeedURL
	}
	if checkInterval <= 0 {
		checkInterval = time.Hour * 24 * 7
	}

	return &Manager{
		store:          store,
		feedURL:        feedURL,
		checkInterval:  checkInterval,
		downloaderPath: downloaderPath,
		ffmpegPath:     ffmpegPath,
		ffprobePath:    ffprobePath,
	}
}

// Versions returns the stored record.
func (m *Manager) Versions() (BinaryVersions, error) {
	return m.store.Load()
}

// Refresh probes every binary and persists the result.
func (m *Manager) Refresh(ctx context.Context) (BinaryVersions, error) {
	v := BinaryVersions{
		YtDlp:       m.probe(ctx, m.downloaderPath, "yt-dlp", "--version"),
		Ffmpeg:      m.probe(ctx, m.ffmpegPath, "ffmpeg", "-version"),
		Ffprobe:     m.probe(ctx, m.ffprobePath, "ffprobe", "-version"),
		LastChecked: time.Now().Format(time.RFC3339),
	}

	if err := m.store.Save(v); err != nil {
		return v, err
	}

	return v, nil
}

// RefreshIfDue runs Refresh only when the throttling interval elapsed.
func (m *Manager) RefreshIfDue(ctx context.Context) {
	current, err := m.store.Load()
	if err != nil {
		slog.Warn("failed loading version record", slog.Any("err", err))
	}

	if !UpdateCheckDue(current.LastChecked, m.checkInterval) {
		return
	}

	if _, err := m.Refresh(ctx); err != nil {
		slog.Warn("version refresh failed", slog.Any("err", err))
	}
}

// LatestRelease queries the release feed for the newest downloader
// tag.
func (m *Manager) LatestRelease(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.feedURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	tag, ok := ExtractReleaseTag(body)
	if !ok {
		return Unknown, nil
	}

	return tag, nil
}

// probe runs a single --version style command with a hard timeout so a
// wedged binary cannot stall the caller.
func (m *Manager) probe(ctx context.Context, path, kind string, arg string) string {
	if path == "" {
		return Unknown
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, arg).Output()
	if err != nil {
		slog.Warn("version probe failed",
			slog.String("binary", kind),
			slog.Any("err", err),
		)
		return Unknown
	}

	return ExtractBinaryVersion(string(out), kind)
}
