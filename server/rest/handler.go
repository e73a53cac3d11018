package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
}

func (h *Handler) StartJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DownloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		jobId, err := h.service.StartJob(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, map[string]string{"id": jobId})
	}
}

func (h *Handler) Snapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.service.Snapshot(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		writeJSON(w, snap)
	}
}

func (h *Handler) CancelJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.service.CancelJob(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries, err := h.service.History(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, entries)
	}
}

func (h *Handler) Versions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.service.Versions()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, v)
	}
}

func (h *Handler) RefreshVersions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.service.RefreshVersions(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, v)
	}
}

func (h *Handler) LatestRelease() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, err := h.service.LatestRelease(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]string{"tag": tag})
	}
}

func (h *Handler) UpdateDownloader() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.UpdateDownloader(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]bool{"updated": true})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
