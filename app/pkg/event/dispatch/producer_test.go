package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackvault/trackvault/app/models"
)

func TestPushDeliversWhenQueueHasRoom(t *testing.T) {
	j := Job{JobID: 1, SessionUID: 10, Kind: models.JobMetadataExtract}
	require.True(t, push(j))
	assert.Equal(t, j, <-JobQueue)
}

func TestPushGivesUpOnShutdownWhenQueueIsFull(t *testing.T) {
	for i := 0; i < cap(JobQueue); i++ {
		JobQueue <- Job{JobID: int64(i)}
	}
	defer func() {
		for len(JobQueue) > 0 {
			<-JobQueue
		}
	}()

	done := make(chan bool, 1)
	go func() { done <- push(Job{JobID: 999}) }()

	select {
	case <-done:
		t.Fatal("push returned while the queue was full and the dispatcher was running")
	case <-time.After(50 * time.Millisecond):
	}

	taskCancel()
	select {
	case delivered := <-done:
		assert.False(t, delivered, "push must abort once the dispatcher stops")
	case <-time.After(time.Second):
		t.Fatal("push still blocked after the dispatcher stopped")
	}
}
