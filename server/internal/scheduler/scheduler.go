package scheduler

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fetchtray/fetchtray/server/internal/jobs"
	"github.com/fetchtray/fetchtray/server/internal/progress"
	"github.com/fetchtray/fetchtray/server/internal/spawn"
)

// ErrNoMembers is the job-level failure for a discovery run that
// enumerated nothing. It is distinct from per-item failures, which
// never abort the job on their own.
var ErrNoMembers = errors.New("no downloadable members found")

// Settings holds the resolved paths and bounds the scheduler operates
// with. Paths are supplied by the provisioning layer, never computed
// here.
type Settings struct {
	DownloaderPath      string
	FfmpegPath          string
	Concurrency         int
	FragmentConcurrency int
}

// Scheduler runs one discovery subprocess per job and a bounded pool
// of fetch subprocesses against the members it enumerates. Each
// fetch's output is tokenized into lines, parsed into progress events
// and applied to the aggregator under the member's index.
type Scheduler struct {
	settings Settings
	spawner  spawn.Spawner
	agg      *jobs.Aggregator

	mu    sync.Mutex
	procs map[string][]spawn.Handle
}

func New(settings Settings, spawner spawn.Spawner, agg *jobs.Aggregator) *Scheduler {
	if settings.Concurrency <= 0 {
		settings.Concurrency = 3
	}
	if settings.FragmentConcurrency <= 0 {
		settings.FragmentConcurrency = 5
	}

	return &Scheduler{
		settings: settings,
		spawner:  spawner,
		agg:      agg,
		procs:    make(map[string][]spawn.Handle),
	}
}

type fetchTask struct {
	index  int
	member Member
}

// Run executes the whole job: discovery, the fetch pool and the final
// completion check. It blocks until the job resolves and returns nil
// only when at least one member was discovered and every member
// reached a terminal state.
func (s *Scheduler) Run(ctx context.Context, jobId, jobURL string, opts Options) error {
	var (
		queue = make(chan fetchTask, 64)
		g     = new(errgroup.Group)
	)

	for i := 0; i < s.settings.Concurrency; i++ {
		g.Go(func() error {
			for task := range queue {
				s.fetch(ctx, jobId, jobURL, task, opts)
			}
			return nil
		})
	}

	discErr := s.discover(ctx, jobId, jobURL, func(m Member) {
		index := s.agg.AddDiscovered(jobId)
		// keep the displayed item count live while enumeration is
		// still running
		s.agg.OnItemCount(jobId, index, index)

		select {
		case queue <- fetchTask{index: index, member: m}:
		case <-ctx.Done():
		}
	})

	close(queue)
	s.agg.DiscoveryEnded(jobId)

	g.Wait()

	snap, err := s.agg.Snapshot(jobId)
	if err != nil {
		return err
	}

	if discErr != nil {
		slog.Error("discovery failed", slog.String("job", jobId), slog.Any("err", discErr))
		s.agg.JobDone(jobId, discErr)
		return discErr
	}

	if snap.TotalDiscovered == 0 {
		s.agg.JobDone(jobId, ErrNoMembers)
		return ErrNoMembers
	}

	slog.Info("job resolved",
		slog.String("job", jobId),
		slog.Int("discovered", snap.TotalDiscovered),
		slog.Int("finished", snap.Finished),
	)

	s.agg.JobDone(jobId, nil)
	return nil
}

// fetch downloads a single member and applies its output stream to the
// aggregator. A failing fetch marks its own item and nothing else.
func (s *Scheduler) fetch(ctx context.Context, jobId, jobURL string, task fetchTask, opts Options) {
	fetchURL, ok := ResolveMemberURL(jobURL, task.member)
	if !ok {
		slog.Warn("member has no resolvable URL",
			slog.String("job", jobId),
			slog.Int("index", task.index),
			slog.String("id", task.member.Id),
		)
		s.agg.MarkFinished(jobId, task.index, "no resolvable URL for member")
		return
	}

	args := []string{
		fetchURL,
		"--newline",
		"--no-colors",
		"--no-playlist",
		"--progress",
		"--concurrent-fragments", strconv.Itoa(s.settings.FragmentConcurrency),
	}
	if s.settings.FfmpegPath != "" {
		args = append(args, "--ffmpeg-location", s.settings.FfmpegPath)
	}
	args = append(args, opts.Args()...)

	slog.Info("starting fetch",
		slog.String("job", jobId),
		slog.Int("index", task.index),
		slog.String("url", fetchURL),
	)

	handle, err := s.spawner.Spawn(ctx, s.settings.DownloaderPath, args...)
	if err != nil {
		s.agg.MarkFinished(jobId, task.index, err.Error())
		return
	}

	s.track(jobId, handle)
	defer s.untrack(jobId, handle)

	go s.consumeErrorStream(handle.Stderr(), jobId, task.index)

	scanner := bufio.NewScanner(handle.Stdout())
	for scanner.Scan() {
		s.dispatch(jobId, task.index, progress.Parse(scanner.Text()))
	}

	if err := handle.Wait(); err != nil {
		s.agg.MarkFinished(jobId, task.index, err.Error())
		return
	}

	s.agg.MarkFinished(jobId, task.index, "")
}

// dispatch applies one parsed event to the aggregator, scoped to the
// owning member's index. The parallel-download indicator inside
// Progress refers to fragment slots of a single transfer, not to
// playlist positions, so the member index always wins.
func (s *Scheduler) dispatch(jobId string, index int, ev progress.Event) {
	switch e := ev.(type) {
	case nil:
	case progress.Playlist:
		s.agg.SetPlaylistName(jobId, e.Name)
	case progress.ItemCount:
		s.agg.OnItemCount(jobId, index, index)
	case progress.ItemTitle:
		s.agg.OnTitle(jobId, index, e.Title)
	case progress.Progress:
		s.agg.OnProgress(jobId, index, e.Percent, e.Size, e.Speed, e.ETA)
	case progress.Destination:
		s.agg.OnProcessing(jobId, index)
	case progress.Processing:
		s.agg.OnProcessing(jobId, index)
	case progress.Complete:
		if e.Title != "" && e.Title != "Unknown" {
			s.agg.OnTitle(jobId, index, e.Title)
		}
		s.agg.OnComplete(jobId, index)
	case progress.Error:
		s.agg.OnError(jobId, index, e.Message)
	}
}

// consumeErrorStream surfaces explicit error lines to the aggregator
// and logs everything else.
func (s *Scheduler) consumeErrorStream(r io.Reader, jobId string, index int) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		if ev, ok := progress.Parse(line).(progress.Error); ok {
			s.agg.OnError(jobId, index, ev.Message)
			continue
		}

		slog.Debug("downloader stderr",
			slog.String("job", jobId),
			slog.Int("index", index),
			slog.String("line", line),
		)
	}
}

// CancelJob terminates every child process still running for the job.
func (s *Scheduler) CancelJob(jobId string) {
	s.mu.Lock()
	handles := s.procs[jobId]
	delete(s.procs, jobId)
	s.mu.Unlock()

	for _, h := range handles {
		if err := h.Kill(); err != nil {
			slog.Warn("failed killing child process",
				slog.String("job", jobId),
				slog.Any("err", err),
			)
		}
	}
}

// Shutdown terminates the child processes of every job.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	jobIds := make([]string, 0, len(s.procs))
	for id := range s.procs {
		jobIds = append(jobIds, id)
	}
	s.mu.Unlock()

	for _, id := range jobIds {
		s.CancelJob(id)
	}
}

func (s *Scheduler) track(jobId string, h spawn.Handle) {
	s.mu.Lock()
	s.procs[jobId] = append(s.procs[jobId], h)
	s.mu.Unlock()
}

func (s *Scheduler) untrack(jobId string, h spawn.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles := s.procs[jobId]
	for i, v := range handles {
		if v == h {
			s.procs[jobId] = append(handles[:i], handles[i+1:]...)
			return
		}
	}
}

func logProcessErrors(stderr io.Reader, jobId, url string) {
	scanner := bufio.NewScanner(stderr)

	for scanner.Scan() {
		slog.Debug("discovery stderr",
			slog.String("job", jobId),
			slog.String("url", url),
			slog.String("line", scanner.Text()),
		)
	}
}
