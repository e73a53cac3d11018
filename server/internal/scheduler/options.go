package scheduler

import "fmt"

// Options is the per-job option set forwarded to every fetch
// subprocess. Output must contain the downloader's title/extension
// placeholder pair.
type Options struct {
	Format            string `json:"format,omitempty"`
	ExtractAudio      bool   `json:"extractAudio,omitempty"`
	AudioFormat       string `json:"audioFormat,omitempty"`
	MergeOutputFormat string `json:"mergeOutputFormat,omitempty"`
	Output            string `json:"output"`
}

// Args renders the option set as downloader arguments.
func (o Options) Args() []string {
	var args []string

	if o.Format != "" {
		args = append(args, "-f", o.Format)
	}
	if o.ExtractAudio {
		args = append(args, "-x")
	}
	if o.AudioFormat != "" {
		args = append(args, "--audio-format", o.AudioFormat)
	}
	if o.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", o.MergeOutputFormat)
	}
	if o.Output != "" {
		args = append(args, "-o", o.Output)
	}

	return args
}

// AudioPreset is the option set for audio-only downloads.
func AudioPreset(downloadPath string) Options {
	return Options{
		Format:       "bestaudio/best",
		ExtractAudio: true,
		AudioFormat:  "mp3",
		Output:       outputTemplate(downloadPath),
	}
}

// VideoPreset is the option set for full quality video downloads.
func VideoPreset(downloadPath string) Options {
	return Options{
		Format: "bestvideo+bestaudio/best",
		Output: outputTemplate(downloadPath),
	}
}

func outputTemplate(downloadPath string) string {
	return fmt.Sprintf("%s/%%(title)s.%%(ext)s", downloadPath)
}
