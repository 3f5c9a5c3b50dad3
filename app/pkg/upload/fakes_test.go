package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trackvault/trackvault/app/models"
)

// In-memory collaborators for exercising the pipeline without a database
// or object storage behind it.

type fakeSessions struct {
	mu sync.Mutex
	m  map[int64]*models.UploadSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{m: make(map[int64]*models.UploadSession)}
}

func (f *fakeSessions) Create(_ context.Context, s *models.UploadSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.m[s.UID]; ok {
		return fmt.Errorf("duplicate session uid %d", s.UID)
	}
	cp := *s
	f.m[s.UID] = &cp
	return nil
}

func (f *fakeSessions) Get(_ context.Context, uid int64) (*models.UploadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[uid]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) CASState(_ context.Context, uid int64, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[uid]
	if !ok {
		return false, ErrSessionNotFound
	}
	if s.State != from {
		return false, nil
	}
	s.State = to
	return true, nil
}

func (f *fakeSessions) MarkFailed(_ context.Context, uid int64, from, failCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[uid]
	if !ok {
		return false, ErrSessionNotFound
	}
	if s.State != from {
		return false, nil
	}
	s.State = models.SessionFailed
	s.FailCode = failCode
	return true, nil
}

func (f *fakeSessions) Touch(_ context.Context, uid int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[uid]
	if !ok {
		return ErrSessionNotFound
	}
	s.LastActivity = &at
	return nil
}

func (f *fakeSessions) ListIdle(_ context.Context, before time.Time) ([]models.UploadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UploadSession
	for _, s := range f.m {
		if !models.TerminalSessionState(s.State) && s.LastActivity != nil && s.LastActivity.Before(before) {
			out = append(out, *s)
		}
	}
	return out, nil
}

// setState force-sets a state for test setup, bypassing transition rules.
func (f *fakeSessions) setState(uid int64, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[uid].State = state
}

type fakeChunks struct {
	mu sync.Mutex
	m  map[int64]map[int64]models.ChunkRecord
}

func newFakeChunks() *fakeChunks {
	return &fakeChunks{m: make(map[int64]map[int64]models.ChunkRecord)}
}

func (f *fakeChunks) Upsert(_ context.Context, c *models.ChunkRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	byOffset, ok := f.m[c.SessionUID]
	if !ok {
		byOffset = make(map[int64]models.ChunkRecord)
		f.m[c.SessionUID] = byOffset
	}
	byOffset[c.ByteOffset] = *c
	return nil
}

func (f *fakeChunks) List(_ context.Context, sessionUID int64) ([]models.ChunkRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ChunkRecord
	for _, c := range f.m[sessionUID] {
		out = append(out, c)
	}
	return out, nil
}

type fakeArtifacts struct {
	mu sync.Mutex
	m  map[int64]*models.Artifact
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{m: make(map[int64]*models.Artifact)}
}

func (f *fakeArtifacts) Create(_ context.Context, a *models.Artifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.m[a.SessionUID]; ok {
		return fmt.Errorf("artifact for session %d already exists", a.SessionUID)
	}
	cp := *a
	f.m[a.SessionUID] = &cp
	return nil
}

func (f *fakeArtifacts) GetBySession(_ context.Context, sessionUID int64) (*models.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.m[sessionUID]
	if !ok {
		return nil, errors.New("artifact not found")
	}
	cp := *a
	return &cp, nil
}

type fakeJobs struct {
	mu           sync.Mutex
	next         int64
	jobs         []*models.ProcessingJob
	failEnqueues int // next N enqueues fail
}

func newFakeJobs() *fakeJobs { return &fakeJobs{} }

func (f *fakeJobs) Enqueue(_ context.Context, job *models.ProcessingJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEnqueues > 0 {
		f.failEnqueues--
		return errors.New("job store unavailable")
	}
	f.next++
	cp := *job
	cp.ID = f.next
	f.jobs = append(f.jobs, &cp)
	return nil
}

func (f *fakeJobs) ListBySession(_ context.Context, sessionUID int64) ([]models.ProcessingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProcessingJob
	for _, j := range f.jobs {
		if j.SessionUID == sessionUID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJobs) countKind(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, j := range f.jobs {
		if j.Kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeJobs) setStatus(kind string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.Kind == kind {
			j.Status = status
		}
	}
}

type fakeBlobs struct {
	mu       sync.Mutex
	m        map[string][]byte
	failPuts int // next N puts fail
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{m: make(map[string][]byte)} }

func blobKey(bucket, name string) string { return bucket + "/" + name }

func (f *fakeBlobs) Put(_ context.Context, bucket, name string, reader io.Reader, size int64, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("body is %d bytes, declared %d", len(data), size)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPuts > 0 {
		f.failPuts--
		return "", errors.New("backend unavailable")
	}
	f.m[blobKey(bucket, name)] = data
	return blobKey(bucket, name), nil
}

func (f *fakeBlobs) Get(_ context.Context, bucket, name string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.m[blobKey(bucket, name)]
	if !ok {
		return nil, fmt.Errorf("object %s not found", blobKey(bucket, name))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobs) Delete(_ context.Context, bucket, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, blobKey(bucket, name))
	return nil
}

func (f *fakeBlobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.m)
}

// rig bundles a fully wired in-memory pipeline.
type rig struct {
	sessions  *fakeSessions
	chunks    *fakeChunks
	artifacts *fakeArtifacts
	jobs      *fakeJobs
	blobs     *fakeBlobs
	notifier  *Notifier
	receiver  *Receiver
	assembler *Assembler
}

func newRig() *rig {
	var seq int64
	nextID := func() (int64, error) {
		return atomic.AddInt64(&seq, 1), nil
	}
	r := &rig{
		sessions:  newFakeSessions(),
		chunks:    newFakeChunks(),
		artifacts: newFakeArtifacts(),
		jobs:      newFakeJobs(),
		blobs:     newFakeBlobs(),
		notifier:  NewNotifier(),
	}
	r.receiver = &Receiver{
		Sessions:  r.sessions,
		Chunks:    r.chunks,
		Blobs:     r.blobs,
		Jobs:      r.jobs,
		Notifier:  r.notifier,
		Validator: &Validator{MaxFileSize: 500 << 20},
		NextID:    nextID,
	}
	r.assembler = &Assembler{
		Sessions:   r.sessions,
		Chunks:     r.chunks,
		Artifacts:  r.artifacts,
		Jobs:       r.jobs,
		Blobs:      r.blobs,
		Notifier:   r.notifier,
		NextID:     nextID,
		ScratchDir: os.TempDir(),
	}
	return r
}
