package updater

import (
	"log/slog"
	"os/exec"

	"github.com/fetchtray/fetchtray/server/config"
)

// UpdateExecutable updates the downloader binary using its builtin
// self-update.
func UpdateExecutable() error {
	cmd := exec.Command(config.Instance().Paths.DownloaderPath, "-U")

	out, err := cmd.CombinedOutput()
	if err != nil {
		slog.Error("downloader self-update failed",
			slog.String("output", string(out)),
			slog.Any("err", err),
		)
		return err
	}

	slog.Info("downloader self-update finished", slog.String("output", string(out)))
	return nil
}
