package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineAssemblerSplitsChunks(t *testing.T) {
	var a lineAssembler

	assert.Empty(t, a.feed([]byte(`{"id":`)))

	lines := a.feed([]byte("\"a\"}\n{\"id\":\"b\"}\n{\"id\":"))
	assert.Equal(t, [][]byte{
		[]byte(`{"id":"a"}`),
		[]byte(`{"id":"b"}`),
	}, lines)

	// the trailing fragment only completes once its terminator arrives
	lines = a.feed([]byte("\"c\"}\n"))
	assert.Equal(t, [][]byte{[]byte(`{"id":"c"}`)}, lines)
}

func TestLineAssemblerStripsCarriageReturn(t *testing.T) {
	var a lineAssembler

	lines := a.feed([]byte("first\r\nsecond\n"))
	assert.Equal(t, [][]byte{[]byte("first"), []byte("second")}, lines)
}

func TestLineAssemblerEmptyChunks(t *testing.T) {
	var a lineAssembler

	assert.Empty(t, a.feed(nil))
	assert.Empty(t, a.feed([]byte{}))

	lines := a.feed([]byte("\n"))
	assert.Equal(t, [][]byte{[]byte("")}, lines)
}

func TestOptionsArgs(t *testing.T) {
	opts := Options{
		Format:       "bestaudio/best",
		ExtractAudio: true,
		AudioFormat:  "mp3",
		Output:       "/downloads/%(title)s.%(ext)s",
	}

	assert.Equal(t, []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"-o", "/downloads/%(title)s.%(ext)s",
	}, opts.Args())

	assert.Empty(t, Options{}.Args())
}

func TestPresets(t *testing.T) {
	audio := AudioPreset("/dl")
	assert.True(t, audio.ExtractAudio)
	assert.Equal(t, "mp3", audio.AudioFormat)
	assert.Equal(t, "/dl/%(title)s.%(ext)s", audio.Output)

	video := VideoPreset("/dl")
	assert.False(t, video.ExtractAudio)
	assert.Equal(t, "bestvideo+bestaudio/best", video.Format)
	assert.Equal(t, "/dl/%(title)s.%(ext)s", video.Output)
}
