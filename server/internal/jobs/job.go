package jobs

// Status of a single download item. Completed and StatusError are
// terminal.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
)

const initialTitle = "Initializing..."

// Item is one individually fetchable unit within a job. Indexing is
// 1-based, mirroring the downloader's playlist ordinals.
type Item struct {
	Id       string  `json:"id"`
	Title    string  `json:"title"`
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
	Size     string  `json:"size,omitempty"`
	Speed    string  `json:"speed,omitempty"`
	Eta      string  `json:"eta,omitempty"`
	Error    string  `json:"error,omitempty"`

	// set once the owning subprocess exited, so repeated exit
	// notifications never double-count toward job completion
	counted bool
}

func (i *Item) terminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusError
}

type job struct {
	id              string
	playlistName    string
	items           []*Item // items[i] is the item at index i+1
	totalDiscovered int
	finished        int
	discoveryEnded  bool
	initPlaceholder bool
}

// Snapshot is the externally observable state of a job.
type Snapshot struct {
	Id              string `json:"id"`
	PlaylistName    string `json:"playlistName,omitempty"`
	Items           []Item `json:"items"`
	TotalDiscovered int    `json:"totalDiscovered"`
	Finished        int    `json:"finished"`
	Complete        bool   `json:"complete"`
}

// Notification topics published by the aggregator.
const (
	TopicPlaylistInfo   = "download:playlist-info"
	TopicItemStart      = "download:item-start"
	TopicItemTitle      = "download:item-title"
	TopicProgressUpdate = "download:progress-update"
	TopicItemProcessing = "download:item-processing"
	TopicItemComplete   = "download:item-complete"
	TopicItemError      = "download:item-error"
	TopicJobComplete    = "download:job-complete"
)

// PlaylistInfo is the payload of TopicPlaylistInfo.
type PlaylistInfo struct {
	JobId string `json:"jobId"`
	Name  string `json:"name"`
}

// ItemEvent is the payload of every per-item topic.
type ItemEvent struct {
	JobId string `json:"jobId"`
	Index int    `json:"index"`
	Item  Item   `json:"item"`
}

// JobEvent is the payload of TopicJobComplete.
type JobEvent struct {
	JobId  string `json:"jobId"`
	Failed bool   `json:"failed"`
	Error  string `json:"error,omitempty"`
}

// Emitter receives every externally observable state change.
type Emitter interface {
	Publish(topic string, payload any)
}

// NopEmitter discards all notifications.
type NopEmitter struct{}

func (NopEmitter) Publish(string, any) {}
