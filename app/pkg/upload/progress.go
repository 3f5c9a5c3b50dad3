package upload

import (
	"context"
	"sync"
	"time"

	"github.com/trackvault/trackvault/app/models"
)

// Event is a point-in-time progress notification for one session.
type Event struct {
	SessionUID    int64     `json:"sessionUid"`
	State         string    `json:"state"`
	ReceivedBytes int64     `json:"receivedBytes"`
	TotalSize     int64     `json:"totalSize"`
	FailCode      string    `json:"failCode,omitempty"`
	At            time.Time `json:"at"`
}

const subscriberBuffer = 16

// Notifier fans progress events out to subscribers. Publish never blocks
// the writer path: a subscriber whose buffer is full misses the event and
// catches up from the next one or from a Snapshot.
type Notifier struct {
	mu   sync.RWMutex
	subs map[int64]map[chan Event]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int64]map[chan Event]struct{})}
}

// Subscribe registers interest in one session. Subscribing to an unknown
// session is allowed; the channel simply stays quiet. The returned cancel
// func must be called to release the channel.
func (n *Notifier) Subscribe(sessionUID int64) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	n.mu.Lock()
	set, ok := n.subs[sessionUID]
	if !ok {
		set = make(map[chan Event]struct{})
		n.subs[sessionUID] = set
	}
	set[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if set, ok := n.subs[sessionUID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(n.subs, sessionUID)
			}
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to current subscribers, dropping on full buffers.
func (n *Notifier) Publish(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.subs[ev.SessionUID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// JobProgress is the per-job slice of a progress snapshot.
type JobProgress struct {
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// Progress is the full derived view of a session: state, persisted
// coverage and the processing fan-out. It is computed from storage, never
// cached in memory, so restarts cannot lie about it.
type Progress struct {
	SessionUID    int64               `json:"sessionUid"`
	State         string              `json:"state"`
	FailCode      string              `json:"failCode,omitempty"`
	ReceivedBytes int64               `json:"receivedBytes"`
	TotalSize     int64               `json:"totalSize"`
	Percent       float64             `json:"percent"`
	Ranges        []models.ChunkRange `json:"ranges,omitempty"`
	Jobs          []JobProgress       `json:"jobs,omitempty"`
}

// StatusReader derives Progress snapshots from the persistent stores.
type StatusReader struct {
	Sessions SessionStore
	Chunks   ChunkStore
	Jobs     JobStore
}

func (s *StatusReader) Snapshot(ctx context.Context, uid int64) (*Progress, error) {
	sess, err := s.Sessions.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	chunks, err := s.Chunks.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	cov := BuildCoverage(chunks, sess.TotalSize)
	p := &Progress{
		SessionUID:    uid,
		State:         sess.State,
		FailCode:      sess.FailCode,
		ReceivedBytes: cov.ReceivedBytes,
		TotalSize:     cov.TotalSize,
		Percent:       cov.Percent(),
		Ranges:        cov.Ranges,
	}
	jobs, err := s.Jobs.ListBySession(ctx, uid)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if j.Kind == models.JobChunkSweep {
			continue
		}
		p.Jobs = append(p.Jobs, JobProgress{
			Kind:     j.Kind,
			Status:   jobStatusName(j.Status),
			Attempts: j.ExecuteTime,
			Error:    j.ErrorInfo,
		})
	}
	return p, nil
}

func jobStatusName(status int) string {
	switch status {
	case models.JobStatusQueued:
		return "queued"
	case models.JobStatusRunning:
		return "running"
	case models.JobStatusSucceeded:
		return "succeeded"
	case models.JobStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
