package jobs

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Aggregator owns the mutable per-job item collections and applies
// incoming progress events to them. All methods are safe for
// concurrent use; every mutation is followed by a notification on the
// configured Emitter.
//
// Events referencing an index that was never announced are tolerated:
// the referenced item is created on the fly as a pending placeholder.
// The downloader interleaves title, count and progress lines freely,
// so out-of-order arrival is the norm rather than the exception.
type Aggregator struct {
	jobs    map[string]*job
	emitter Emitter
	mu      sync.RWMutex
}

func NewAggregator(emitter Emitter) *Aggregator {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &Aggregator{
		jobs:    make(map[string]*job),
		emitter: emitter,
	}
}

// StartJob creates a new job holding a single placeholder item and
// returns its id.
func (a *Aggregator) StartJob() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := uuid.NewString()
	j := &job{
		id:              id,
		items:           []*Item{newItem(1, initialTitle)},
		initPlaceholder: true,
	}
	a.jobs[id] = j

	slog.Info("job started", slog.String("id", id))

	a.emitter.Publish(TopicItemStart, ItemEvent{JobId: id, Index: 1, Item: *j.items[0]})
	return id
}

func (a *Aggregator) SetPlaylistName(jobId, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return
	}
	j.playlistName = name

	a.emitter.Publish(TopicPlaylistInfo, PlaylistInfo{JobId: jobId, Name: name})
}

// OnItemCount ensures items 1..total exist and marks the item at index
// as downloading. The very first real item replaces the initial
// placeholder instead of being appended after it.
func (a *Aggregator) OnItemCount(jobId string, index, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return
	}

	if index == 1 && j.initPlaceholder && len(j.items) > 0 {
		j.items[0] = newItem(1, "Item 1")
		j.initPlaceholder = false
	}

	for len(j.items) < total {
		j.items = append(j.items, newItem(len(j.items)+1, ""))
	}

	it := j.item(index)
	if it == nil {
		return
	}
	it.Status = StatusDownloading

	a.emitter.Publish(TopicItemStart, ItemEvent{JobId: jobId, Index: index, Item: *it})
}

// OnTitle sets the item title, creating the item when the index was
// never announced. A pending item is promoted to downloading since a
// title only ever arrives once the transfer begins.
func (a *Aggregator) OnTitle(jobId string, index int, title string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return
	}

	it := j.ensure(index)
	if it == nil {
		return
	}

	it.Title = title
	if it.Status == StatusPending {
		it.Status = StatusDownloading
	}
	j.initPlaceholder = false

	a.emitter.Publish(TopicItemTitle, ItemEvent{JobId: jobId, Index: index, Item: *it})
}

func (a *Aggregator) OnProgress(jobId string, index int, percent float64, size, speed, eta string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return
	}

	it := j.ensure(index)
	if it == nil {
		return
	}

	it.Status = StatusDownloading
	it.Progress = percent
	if size != "" {
		it.Size = size
	}
	if speed != "" {
		it.Speed = speed
	}
	if eta != "" {
		it.Eta = eta
	}

	a.emitter.Publish(TopicProgressUpdate, ItemEvent{JobId: jobId, Index: index, Item: *it})
}

func (a *Aggregator) OnProcessing(jobId string, index int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return
	}

	it := j.ensure(index)
	if it == nil {
		return
	}

	it.Status = StatusProcessing
	it.Progress = 100

	a.emitter.Publish(TopicItemProcessing, ItemEvent{JobId: jobId, Index: index, Item: *it})
}

func (a *Aggregator) OnComplete(jobId string, index int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return
	}

	it := j.ensure(index)
	if it == nil {
		return
	}

	it.Status = StatusCompleted
	it.Progress = 100

	a.emitter.Publish(TopicItemComplete, ItemEvent{JobId: jobId, Index: index, Item: *it})
}

func (a *Aggregator) OnError(jobId string, index int, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return
	}

	it := j.ensure(index)
	if it == nil {
		return
	}

	it.Status = StatusError
	it.Error = message

	slog.Warn("item failed",
		slog.String("job", jobId),
		slog.Int("index", index),
		slog.String("err", message),
	)

	a.emitter.Publish(TopicItemError, ItemEvent{JobId: jobId, Index: index, Item: *it})
}

// AddDiscovered registers one enumerated member and returns its index.
func (a *Aggregator) AddDiscovered(jobId string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return 0
	}
	j.totalDiscovered++
	return j.totalDiscovered
}

// MarkFinished records that the member at index reached a terminal
// state. Repeated delivery for the same index only counts once.
func (a *Aggregator) MarkFinished(jobId string, index int, errMessage string) {
	a.mu.Lock()

	j, ok := a.jobs[jobId]
	if !ok {
		a.mu.Unlock()
		return
	}

	it := j.ensure(index)
	if it.counted {
		a.mu.Unlock()
		return
	}
	it.counted = true
	j.finished++

	if !it.terminal() {
		if errMessage != "" {
			it.Status = StatusError
			it.Error = errMessage
		} else {
			it.Status = StatusCompleted
			it.Progress = 100
		}
	}

	snapshot := *it
	a.mu.Unlock()

	if snapshot.Status == StatusError {
		a.emitter.Publish(TopicItemError, ItemEvent{JobId: jobId, Index: index, Item: snapshot})
	} else {
		a.emitter.Publish(TopicItemComplete, ItemEvent{JobId: jobId, Index: index, Item: snapshot})
	}
}

// DiscoveryEnded marks the enumeration phase as finished.
func (a *Aggregator) DiscoveryEnded(jobId string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if j, ok := a.jobs[jobId]; ok {
		j.discoveryEnded = true
	}
}

// IsComplete reports whether the job resolved: discovery ended, every
// discovered member is terminal, and at least one member was found.
func (a *Aggregator) IsComplete(jobId string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return false
	}
	return j.complete()
}

// JobDone publishes the terminal job notification.
func (a *Aggregator) JobDone(jobId string, err error) {
	ev := JobEvent{JobId: jobId}
	if err != nil {
		ev.Failed = true
		ev.Error = err.Error()
	}
	a.emitter.Publish(TopicJobComplete, ev)
}

// Snapshot returns a copy of the current job state for display.
func (a *Aggregator) Snapshot(jobId string) (Snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	j, ok := a.jobs[jobId]
	if !ok {
		return Snapshot{}, fmt.Errorf("no job found for id %s", jobId)
	}

	s := Snapshot{
		Id:              j.id,
		PlaylistName:    j.playlistName,
		Items:           make([]Item, len(j.items)),
		TotalDiscovered: j.totalDiscovered,
		Finished:        j.finished,
		Complete:        j.complete(),
	}
	for i, it := range j.items {
		s.Items[i] = *it
	}
	return s, nil
}

// Reset drops the job's items and playlist name. It only clears the
// display model; already spawned subprocesses are unaffected.
func (a *Aggregator) Reset(jobId string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.jobs, jobId)
}

// ResetAll clears every job view.
func (a *Aggregator) ResetAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.jobs = make(map[string]*job)
}

func (j *job) complete() bool {
	return j.discoveryEnded && j.totalDiscovered > 0 && j.finished == j.totalDiscovered
}

// item returns the item at the 1-based index, nil when out of range.
func (j *job) item(index int) *Item {
	if index < 1 || index > len(j.items) {
		return nil
	}
	return j.items[index-1]
}

// ensure returns the item at index, growing the collection with
// pending placeholders when events arrive before their item-count
// announcement.
func (j *job) ensure(index int) *Item {
	if index < 1 {
		index = 1
	}
	for len(j.items) < index {
		j.items = append(j.items, newItem(len(j.items)+1, ""))
	}
	return j.items[index-1]
}

func newItem(index int, title string) *Item {
	if title == "" {
		title = fmt.Sprintf("Item %d", index)
	}
	return &Item{
		Id:     fmt.Sprintf("item-%d", index),
		Title:  title,
		Status: StatusPending,
	}
}
