package models

import "time"

// Job kinds. assemble and chunkSweep are infrastructure jobs that ride the
// same dispatch loop as the audio jobs.
const (
	JobAssemble        = "artifactAssemble"
	JobMetadataExtract = "metadataExtract"
	JobWaveform        = "waveform"
	JobPreview         = "preview"
	JobChunkSweep      = "chunkSweep"
)

// Job status values.
const (
	JobStatusQueued    = 0
	JobStatusRunning   = 1
	JobStatusSucceeded = 2
	JobStatusFailed    = 99
)

// RequiredJob reports whether a failed job of this kind must fail the
// session. Metadata extraction is required; waveform and preview are
// best-effort.
func RequiredJob(kind string) bool {
	return kind == JobMetadataExtract
}

// AudioJobKinds the per-artifact processing fan-out, queued after assembly.
var AudioJobKinds = []string{JobMetadataExtract, JobWaveform, JobPreview}

// ProcessingJob one retryable unit of post-assembly work.
type ProcessingJob struct {
	ID            int64      `gorm:"column:id;primaryKey;not null;autoIncrement"`
	SessionUID    int64      `gorm:"column:session_uid;not null;index:idx_job_session"`
	ArtifactUID   int64      `gorm:"column:artifact_uid;index:idx_job_artifact"`
	Kind          string     `gorm:"column:kind;type:varchar(32);not null"`
	Status        int        `gorm:"column:status;not null;index:idx_job_status"`
	ExecuteTime   int        `gorm:"column:execute_time;default:0"` // attempts so far
	NextAttemptAt *time.Time `gorm:"column:next_attempt_at"`        // backoff gate, null = ready now
	NodeId        string     `gorm:"column:node_id;type:varchar(255);index:idx_job_node"`
	JobLogID      int64      `gorm:"column:job_log_id"`
	ExtraData     string     `gorm:"column:extra_data;type:text"`
	ErrorInfo     string     `gorm:"column:error_info;type:text"`
	CreatedAt     *time.Time `gorm:"column:created_at;not null"`
	UpdatedAt     *time.Time `gorm:"column:updated_at;not null"`
}

// JobLog one attempt of one job, kept for audit.
type JobLog struct {
	ID        int64      `gorm:"column:id;primaryKey;not null;autoIncrement"`
	JobID     int64      `gorm:"column:job_id;index:idx_job_log_job"`
	Status    int        `gorm:"column:status;index:idx_job_log_status"`
	ErrorInfo string     `gorm:"column:error_info;type:text"`
	CreatedAt *time.Time `gorm:"column:created_at;not null"`
	UpdatedAt *time.Time `gorm:"column:updated_at;not null"`
}

// AssembleMsg extra data for artifactAssemble jobs.
type AssembleMsg struct {
	SessionUID int64 `json:"sessionUid"`
}

// SweepMsg extra data for chunkSweep jobs.
type SweepMsg struct {
	SessionUID int64 `json:"sessionUid"`
}
