package progress

// Stage of a postprocessing step that announced its output file.
type Stage string

const (
	StageExtracting Stage = "extracting"
	StageMerging    Stage = "merging"
)

// Reason a Complete event was emitted.
type Reason string

const (
	ReasonCleanup           Reason = "cleanup"
	ReasonAlreadyDownloaded Reason = "already_downloaded"
	ReasonPlaylistComplete  Reason = "playlist_complete"
)

// Event is one typed progress signal derived from a single line of
// downloader output. Parse returns nil for lines carrying no signal.
type Event interface {
	isEvent()
}

// Playlist announces the playlist name.
type Playlist struct {
	Name string
}

// ItemCount announces an item's ordinal position within the playlist.
type ItemCount struct {
	Current int
	Total   int
}

// Progress reports fractional completion of the active transfer.
// Index is 0 unless the line carried an explicit parallel-download
// indicator. Size, Speed and ETA are empty when absent from the line.
type Progress struct {
	Index   int
	Percent float64
	Size    string
	Speed   string
	ETA     string
}

// Destination reports the output file of a postprocessing step.
type Destination struct {
	FileName string
	Stage    Stage
}

// Processing signals a generic postprocessing step with no extractable
// detail.
type Processing struct{}

// Complete signals that the transfer reached a terminal condition.
// Title is only set for already-downloaded lines that carried a path.
type Complete struct {
	Reason Reason
	Title  string
}

// Error carries the message of an explicit downloader error line.
type Error struct {
	Message string
}

// ItemTitle carries a bare item title recovered from a destination path.
type ItemTitle struct {
	Title string
}

func (Playlist) isEvent()    {}
func (ItemCount) isEvent()   {}
func (Progress) isEvent()    {}
func (Destination) isEvent() {}
func (Processing) isEvent()  {}
func (Complete) isEvent()    {}
func (Error) isEvent()       {}
func (ItemTitle) isEvent()   {}
