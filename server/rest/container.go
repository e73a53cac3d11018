package rest

import (
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/fetchtray/fetchtray/server/archive"
	"github.com/fetchtray/fetchtray/server/internal/jobs"
	"github.com/fetchtray/fetchtray/server/internal/scheduler"
	"github.com/fetchtray/fetchtray/server/version"
)

type ContainerArgs struct {
	Aggregator *jobs.Aggregator
	Scheduler  *scheduler.Scheduler
	Versions   *version.Manager
	History    *archive.Service
}

var (
	service *Service
	handler *Handler

	serviceOnce sync.Once
	handlerOnce sync.Once
)

func ProvideService(args *ContainerArgs) *Service {
	serviceOnce.Do(func() {
		service = NewService(args.Aggregator, args.Scheduler, args.Versions, args.History)
	})
	return service
}

func ProvideHandler(svc *Service) *Handler {
	handlerOnce.Do(func() {
		handler = &Handler{service: svc}
	})
	return handler
}

func ApplyRouter(args *ContainerArgs) func(chi.Router) {
	h := ProvideHandler(ProvideService(args))

	return func(r chi.Router) {
		r.Post("/jobs", h.StartJob())
		r.Get("/jobs/{id}", h.Snapshot())
		r.Delete("/jobs/{id}", h.CancelJob())
		r.Get("/history", h.History())
		r.Get("/versions", h.Versions())
		r.Post("/versions/check", h.RefreshVersions())
		r.Get("/versions/latest", h.LatestRelease())
		r.Post("/update", h.UpdateDownloader())
	}
}
