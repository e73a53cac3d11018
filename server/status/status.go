package status

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sys/unix"

	"github.com/fetchtray/fetchtray/server/config"
	"github.com/fetchtray/fetchtray/server/version"
)

type payload struct {
	FreeSpace uint64                 `json:"freeSpace"`
	Versions  version.BinaryVersions `json:"versions"`
}

// FreeSpace reports the available bytes on the download volume.
func FreeSpace() (uint64, error) {
	var stat unix.Statfs_t

	path := config.Instance().Paths.DownloadPath
	if path == "" {
		path = "."
	}

	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}

	return stat.Bavail * uint64(stat.Bsize), nil
}

func ApplyRouter(vm *version.Manager) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			free, err := FreeSpace()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			versions, err := vm.Versions()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(payload{
				FreeSpace: free,
				Versions:  versions,
			})
		})
	}
}
