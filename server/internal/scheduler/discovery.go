package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
)

// Member is one flattened enumeration record emitted by the discovery
// subprocess, one JSON object per line.
type Member struct {
	Type          string `json:"_type"`
	Id            string `json:"id"`
	URL           string `json:"url"`
	WebpageURL    string `json:"webpage_url"`
	Title         string `json:"title"`
	PlaylistTitle string `json:"playlist_title"`
}

// lineAssembler reassembles full lines out of arbitrarily chunked
// stream reads. A line only exists once its terminator arrived;
// whatever trails the last terminator at end of stream is discarded as
// non-conformant.
type lineAssembler struct {
	buf []byte
}

func (l *lineAssembler) feed(chunk []byte) [][]byte {
	l.buf = append(l.buf, chunk...)

	var lines [][]byte
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			return lines
		}

		line := bytes.TrimRight(l.buf[:i], "\r")
		lines = append(lines, bytes.Clone(line))
		l.buf = l.buf[i+1:]
	}
}

// discover spawns the enumeration subprocess and streams members into
// onMember as they arrive. Malformed lines are skipped; a failing
// discovery process is an infrastructure error and fails the job.
func (s *Scheduler) discover(ctx context.Context, jobId, jobURL string, onMember func(Member)) error {
	args := []string{
		jobURL,
		"--flat-playlist",
		"--dump-json",
		"--newline",
		"--no-colors",
	}

	slog.Info("starting discovery", slog.String("job", jobId), slog.String("url", jobURL))

	handle, err := s.spawner.Spawn(ctx, s.settings.DownloaderPath, args...)
	if err != nil {
		return err
	}

	s.track(jobId, handle)
	defer s.untrack(jobId, handle)

	go logProcessErrors(handle.Stderr(), jobId, jobURL)

	var (
		assembler lineAssembler
		chunk     = make([]byte, 4096)
		stdout    = handle.Stdout()
	)

	for {
		n, err := stdout.Read(chunk)
		if n > 0 {
			for _, line := range assembler.feed(chunk[:n]) {
				s.decodeMember(jobId, line, onMember)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			handle.Wait()
			return err
		}
	}

	return handle.Wait()
}

func (s *Scheduler) decodeMember(jobId string, line []byte, onMember func(Member)) {
	var m Member
	if err := json.Unmarshal(line, &m); err != nil {
		slog.Debug("skipping malformed discovery line",
			slog.String("job", jobId),
			slog.Any("err", err),
		)
		return
	}

	if m.Type == "playlist" {
		s.agg.SetPlaylistName(jobId, m.Title)
		return
	}

	if m.PlaylistTitle != "" {
		s.agg.SetPlaylistName(jobId, m.PlaylistTitle)
	}

	onMember(m)
}
