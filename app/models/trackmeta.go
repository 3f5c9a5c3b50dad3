package models

import "time"

// TrackMeta output of the audio processing jobs for one artifact. Columns
// are filled incrementally as the independent jobs finish.
type TrackMeta struct {
	ID             int        `gorm:"column:id;primaryKey;not null;autoIncrement"`
	ArtifactUID    int64      `gorm:"column:artifact_uid;not null;uniqueIndex:idx_meta_artifact"`
	DurationSec    float64    `gorm:"column:duration_sec"`
	SampleRate     int        `gorm:"column:sample_rate"`
	BitRate        int        `gorm:"column:bit_rate"`
	Channels       int        `gorm:"column:channels"`
	TagTitle       string     `gorm:"column:tag_title"`
	TagArtist      string     `gorm:"column:tag_artist"`
	TagAlbum       string     `gorm:"column:tag_album"`
	WaveformJSON   string     `gorm:"column:waveform_json;type:text"` // normalized amplitude points
	PreviewBucket  string     `gorm:"column:preview_bucket"`
	PreviewName    string     `gorm:"column:preview_name"`
	PreviewAddress string     `gorm:"column:preview_address"`
	CreatedAt      *time.Time `gorm:"column:created_at;not null"`
	UpdatedAt      *time.Time `gorm:"column:updated_at;not null"`
}
