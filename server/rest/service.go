package rest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fetchtray/fetchtray/server/archive"
	"github.com/fetchtray/fetchtray/server/config"
	"github.com/fetchtray/fetchtray/server/internal/jobs"
	"github.com/fetchtray/fetchtray/server/internal/scheduler"
	"github.com/fetchtray/fetchtray/server/updater"
	"github.com/fetchtray/fetchtray/server/version"
)

// DownloadRequest starts one job. Either a preset name or an explicit
// option set; an empty preset means full quality video.
type DownloadRequest struct {
	URL     string             `json:"url"`
	Preset  string             `json:"preset,omitempty"`
	Options *scheduler.Options `json:"options,omitempty"`
}

type Service struct {
	agg     *jobs.Aggregator
	sched   *scheduler.Scheduler
	vm      *version.Manager
	history *archive.Service
}

func NewService(agg *jobs.Aggregator, sched *scheduler.Scheduler, vm *version.Manager, history *archive.Service) *Service {
	return &Service{
		agg:     agg,
		sched:   sched,
		vm:      vm,
		history: history,
	}
}

// StartJob creates the job view and launches discovery plus the fetch
// pool in the background. The returned id addresses the job from then
// on.
func (s *Service) StartJob(req DownloadRequest) (string, error) {
	if req.URL == "" {
		return "", errors.New("missing download URL")
	}

	opts := s.resolveOptions(req)
	jobId := s.agg.StartJob()

	go func() {
		if err := s.sched.Run(context.Background(), jobId, req.URL, opts); err != nil {
			slog.Error("job failed",
				slog.String("job", jobId),
				slog.String("url", req.URL),
				slog.Any("err", err),
			)
		}
	}()

	return jobId, nil
}

func (s *Service) resolveOptions(req DownloadRequest) scheduler.Options {
	if req.Options != nil {
		return *req.Options
	}

	downloadPath := config.Instance().Paths.DownloadPath

	if req.Preset == "mp3" {
		return scheduler.AudioPreset(downloadPath)
	}
	return scheduler.VideoPreset(downloadPath)
}

func (s *Service) Snapshot(jobId string) (jobs.Snapshot, error) {
	return s.agg.Snapshot(jobId)
}

// CancelJob tears down the job's child processes and drops its view.
func (s *Service) CancelJob(jobId string) {
	s.sched.CancelJob(jobId)
	s.agg.Reset(jobId)
}

func (s *Service) History(ctx context.Context, limit int) ([]archive.Entry, error) {
	return s.history.List(ctx, limit)
}

func (s *Service) Versions() (version.BinaryVersions, error) {
	return s.vm.Versions()
}

func (s *Service) RefreshVersions(ctx context.Context) (version.BinaryVersions, error) {
	return s.vm.Refresh(ctx)
}

func (s *Service) LatestRelease(ctx context.Context) (string, error) {
	return s.vm.LatestRelease(ctx)
}

func (s *Service) UpdateDownloader() error {
	return updater.UpdateExecutable()
}
