package models

import "time"

// Artifact the assembled file. Immutable once created: a re-upload always
// goes through a fresh session and a fresh artifact row.
type Artifact struct {
	ID          int        `gorm:"column:id;primaryKey;not null;autoIncrement"`
	UID         int64      `gorm:"column:uid;not null;uniqueIndex:idx_artifact_uid"`
	SessionUID  int64      `gorm:"column:session_uid;not null;uniqueIndex:idx_artifact_session"`
	Bucket      string     `gorm:"column:bucket;not null"`
	StorageName string     `gorm:"column:storage_name;not null"`
	Address     string     `gorm:"column:address;not null"`
	Size        int64      `gorm:"column:size;not null"`
	Checksum    string     `gorm:"column:checksum;type:varchar(64);not null"` // sha256 hex
	ContentType string     `gorm:"column:content_type;not null"`
	CreatedAt   *time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   *time.Time `gorm:"column:updated_at;not null"`
}
