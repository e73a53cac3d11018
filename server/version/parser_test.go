package version

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBinaryVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		kind   string
		want   string
	}{
		{"yt-dlp date version", "2024.03.10", "yt-dlp", "2024.03.10"},
		{"yt-dlp with noise", "some banner\n2023.11.16\n", "yt-dlp", "2023.11.16"},
		{"yt-dlp garbage", "not a version", "yt-dlp", Unknown},
		{"ffmpeg release", "ffmpeg version 6.0 Copyright (c)", "ffmpeg", "6.0"},
		{"ffmpeg git build", "ffmpeg version N-113684-g1234abcd", "ffmpeg", "N-113684-g1234abcd"},
		{"ffmpeg uppercase marker", "FFmpeg VERSION 5.1.2", "ffmpeg", "5.1.2"},
		{"ffprobe", "ffprobe version 6.0", "ffprobe", "6.0"},
		{"ffmpeg garbage", "no marker here", "ffmpeg", Unknown},
		{"unrecognized kind", "version 1.0", "mystery-tool", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBinaryVersion(tt.output, tt.kind))
		})
	}
}

func TestExtractReleaseTagRoundTrip(t *testing.T) {
	for _, tag := range []string{"2024.03.10", "v1.2.3", "weird tag with spaces"} {
		payload, err := json.Marshal(map[string]any{
			"tag_name": tag,
			"name":     "release name",
			"assets":   []string{},
		})
		require.NoError(t, err)

		got, ok := ExtractReleaseTag(payload)
		require.True(t, ok)
		assert.Equal(t, tag, got)
	}
}

func TestExtractReleaseTagFailures(t *testing.T) {
	_, ok := ExtractReleaseTag([]byte("{malformed"))
	assert.False(t, ok)

	_, ok = ExtractReleaseTag([]byte(`{"name":"no tag"}`))
	assert.False(t, ok)
}

func TestUpdateCheckDue(t *testing.T) {
	week := time.Hour * 24 * 7

	assert.True(t, UpdateCheckDue("not a timestamp", week))
	assert.True(t, UpdateCheckDue("", week))

	// future timestamp fails open
	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	assert.True(t, UpdateCheckDue(future, week))

	recent := time.Now().Add(-time.Hour).Format(time.RFC3339)
	assert.False(t, UpdateCheckDue(recent, week))

	old := time.Now().Add(-week - time.Hour).Format(time.RFC3339)
	assert.True(t, UpdateCheckDue(old, week))

	// boundary must not error, either outcome is acceptable
	boundary := time.Now().Add(-week).Format(time.RFC3339)
	_ = UpdateCheckDue(boundary, week)
}
