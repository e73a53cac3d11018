package notifier

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchtray/fetchtray/server/internal/jobs"
)

func TestPublishReachesSubscribers(t *testing.T) {
	n := New()

	var (
		mu  sync.Mutex
		got []jobs.ItemEvent
	)

	err := n.Subscribe(jobs.TopicItemComplete, func(payload any) {
		ev, ok := payload.(jobs.ItemEvent)
		require.True(t, ok)

		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	require.NoError(t, err)

	n.Publish(jobs.TopicItemComplete, jobs.ItemEvent{JobId: "job-1", Index: 2})
	n.Publish(jobs.TopicItemError, jobs.ItemEvent{JobId: "job-1", Index: 3})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1, "only the subscribed topic should arrive")
	assert.Equal(t, "job-1", got[0].JobId)
	assert.Equal(t, 2, got[0].Index)
}

func TestPublishNeverBlocks(t *testing.T) {
	n := New()

	// no clients connected and the writer may lag, publishing must
	// still return promptly
	for i := 0; i < 1000; i++ {
		n.Publish(jobs.TopicProgressUpdate, jobs.ItemEvent{JobId: "job-1", Index: 1})
	}
}
