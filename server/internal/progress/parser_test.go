package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlreadyDownloaded(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		title string
	}{
		{
			name:  "with path",
			line:  "[download] /tmp/My Video.webm has already been downloaded",
			title: "My Video",
		},
		{
			name:  "windows path",
			line:  `[download] C:\media\clip.mp4 has already been downloaded`,
			title: "clip",
		},
		{
			name:  "surrounding whitespace",
			line:  "   [download] song.mp3 has already been downloaded   ",
			title: "song",
		},
		{
			name:  "no recoverable path",
			line:  "has already been downloaded",
			title: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Parse(tt.line)
			c, ok := ev.(Complete)
			require.True(t, ok, "expected Complete, got %T", ev)
			assert.Equal(t, ReasonAlreadyDownloaded, c.Reason)
			assert.Equal(t, tt.title, c.Title)
		})
	}
}

func TestParsePlaylist(t *testing.T) {
	ev := Parse("[youtube:tab] Downloading playlist: My Mix")
	require.IsType(t, Playlist{}, ev)
	assert.Equal(t, "My Mix", ev.(Playlist).Name)

	ev = Parse("Downloading playlist:")
	require.IsType(t, Playlist{}, ev)
	assert.Equal(t, "Unknown", ev.(Playlist).Name)
}

func TestParseItemCount(t *testing.T) {
	ev := Parse("[download] Downloading item 3 of 12")
	require.IsType(t, ItemCount{}, ev)
	assert.Equal(t, ItemCount{Current: 3, Total: 12}, ev)

	// non-numeric ordinals degrade to zero instead of failing
	ev = Parse("[download] Downloading item foo of bar")
	require.IsType(t, ItemCount{}, ev)
	assert.Equal(t, ItemCount{Current: 0, Total: 0}, ev)
}

func TestParseNoiseLines(t *testing.T) {
	noise := []string{
		"[info] abc123: Downloading 1 format(s): 251",
		"[info] xyz: Downloading 2 format(s): 137+140",
		"[youtube] Extracting URL: https://example.com/watch?v=abc",
		"",
		"some random unrelated line",
	}

	for _, line := range noise {
		assert.Nil(t, Parse(line), "line %q should carry no signal", line)
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Progress
	}{
		{
			name: "full line",
			line: "[download]  45.2% of 5.23MiB at 1.2MiB/s ETA 00:05",
			want: Progress{Percent: 45.2, Size: "5.23MiB", Speed: "1.2MiB/s", ETA: "00:05"},
		},
		{
			name: "parallel index",
			line: "[download] [001]  10.5% of 100.00MiB at  2.5MiB/s ETA 00:35",
			want: Progress{Index: 1, Percent: 10.5, Size: "100.00MiB", Speed: "2.5MiB/s", ETA: "00:35"},
		},
		{
			name: "bare hundred percent",
			line: "[download] 100% of 10.00MiB",
			want: Progress{Percent: 100, Size: "10.00MiB"},
		},
		{
			name: "estimated size",
			line: "[download]  12.0% of ~ 1.50GiB at 800.21KiB/s ETA 12:31",
			want: Progress{Percent: 12, Size: "1.50GiB", Speed: "800.21KiB/s", ETA: "12:31"},
		},
		{
			name: "missing subfields",
			line: "[download] 50%",
			want: Progress{Percent: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Parse(tt.line)
			require.IsType(t, Progress{}, ev)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestParseDestinationPath(t *testing.T) {
	ev := Parse("[download] Destination: /downloads/Cool Song.webm")
	require.IsType(t, ItemTitle{}, ev)
	assert.Equal(t, "Cool Song", ev.(ItemTitle).Title)

	// path without a recognized media extension carries no title
	assert.Nil(t, Parse("[download] Destination: /downloads/notes.txt"))
}

func TestParsePostprocessing(t *testing.T) {
	ev := Parse("[ExtractAudio] Destination: /downloads/Cool Song.mp3")
	require.IsType(t, Destination{}, ev)
	assert.Equal(t, Destination{FileName: "Cool Song.mp3", Stage: StageExtracting}, ev)

	ev = Parse(`[Merger] Merging formats into "/downloads/Video.mkv"`)
	require.IsType(t, Destination{}, ev)
	assert.Equal(t, Destination{FileName: "Video.mkv", Stage: StageMerging}, ev)

	ev = Parse(`[Merger] Merging formats into '/downloads/Video.mkv'`)
	require.IsType(t, Destination{}, ev)
	assert.Equal(t, Destination{FileName: "Video.mkv", Stage: StageMerging}, ev)

	assert.Equal(t, Processing{}, Parse("[ExtractAudio] converting audio"))
	assert.Equal(t, Processing{}, Parse("[Postprocessor] embedding thumbnail"))
}

func TestParseCompletionAndErrors(t *testing.T) {
	ev := Parse("Deleting original file /downloads/Video.f137.mp4 (pass -k to keep)")
	assert.Equal(t, Complete{Reason: ReasonCleanup}, ev)

	ev = Parse("[download] Finished downloading playlist: Test")
	assert.Equal(t, Complete{Reason: ReasonPlaylistComplete}, ev)

	ev = Parse("ERROR: [youtube] abc: Video unavailable")
	require.IsType(t, Error{}, ev)
	assert.Equal(t, "[youtube] abc: Video unavailable", ev.(Error).Message)
}

func TestParseScenarioSequence(t *testing.T) {
	lines := []string{
		"Downloading playlist: Test",
		"Downloading item 1 of 2",
		"[download] 50% of 10.00MiB",
		"Downloading item 2 of 2",
		"Finished downloading playlist: Test",
	}

	var kinds []string
	for _, line := range lines {
		switch Parse(line).(type) {
		case Playlist:
			kinds = append(kinds, "playlist")
		case ItemCount:
			kinds = append(kinds, "item")
		case Progress:
			kinds = append(kinds, "download")
		case Complete:
			kinds = append(kinds, "complete")
		default:
			kinds = append(kinds, "none")
		}
	}

	assert.Equal(t, []string{"playlist", "item", "download", "item", "complete"}, kinds)
}
