package models

import "time"

/*
UploadSession is the durable record of one chunked upload.
*/

// Session states. failed and expired absorb from any non-terminal state.
const (
	SessionCreated    = "created"
	SessionReceiving  = "receiving"
	SessionAssembling = "assembling"
	SessionProcessing = "processing"
	SessionReady      = "ready"
	SessionFailed     = "failed"
	SessionExpired    = "expired"
)

// TerminalSessionState reports whether no further transition is allowed.
func TerminalSessionState(state string) bool {
	return state == SessionReady || state == SessionFailed || state == SessionExpired
}

// UploadSession upload session table
type UploadSession struct {
	ID           int        `gorm:"column:id;primaryKey;not null;autoIncrement"`
	UID          int64      `gorm:"column:uid;not null;uniqueIndex:idx_session_uid"` // snowflake id
	OwnerID      string     `gorm:"column:owner_id;type:varchar(64);not null"`
	AlbumID      string     `gorm:"column:album_id;type:varchar(64)"`
	FileName     string     `gorm:"column:file_name;not null"`
	ContentType  string     `gorm:"column:content_type;not null"`
	TotalSize    int64      `gorm:"column:total_size;not null"`
	Checksum     string     `gorm:"column:checksum;type:varchar(64)"` // declared sha256 hex, optional
	State        string     `gorm:"column:state;type:varchar(16);not null;index:idx_session_state"`
	FailCode     string     `gorm:"column:fail_code;type:varchar(32)"` // stable error code when state=failed
	Bucket       string     `gorm:"column:bucket;not null"`            // bucket holding the part objects
	LastActivity *time.Time `gorm:"column:last_activity;not null"`
	CreatedAt    *time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    *time.Time `gorm:"column:updated_at;not null"`
}

// SessionCreateReq init request body
type SessionCreateReq struct {
	FileName    string `json:"fileName" binding:"required"`
	TotalSize   int64  `json:"totalSize" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Checksum    string `json:"checksum"` // sha256 hex, optional but recommended
	OwnerID     string `json:"ownerId" binding:"required"`
	AlbumID     string `json:"albumId"`
}

// SessionCreateResp init response body
type SessionCreateResp struct {
	UID       string `json:"uid"`
	ChunkSize int64  `json:"chunkSize"`
	State     string `json:"state"`
}
