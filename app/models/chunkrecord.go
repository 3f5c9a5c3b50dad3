package models

import "time"

// ChunkRecord one received byte range of a session. Unique per
// (session uid, offset): a retried write at the same offset overwrites.
type ChunkRecord struct {
	ID          int        `gorm:"column:id;primaryKey;not null;autoIncrement"`
	SessionUID  int64      `gorm:"column:session_uid;not null;uniqueIndex:idx_chunk_session_offset,priority:1;index:idx_chunk_session"`
	ByteOffset  int64      `gorm:"column:byte_offset;not null;uniqueIndex:idx_chunk_session_offset,priority:2"`
	ByteLength  int64      `gorm:"column:byte_length;not null"`
	Bucket      string     `gorm:"column:bucket;not null"`
	StorageName string     `gorm:"column:storage_name;not null"` // part object key
	PartSum     string     `gorm:"column:part_sum;type:varchar(64)"` // sha256 of the part body
	ReceivedAt  *time.Time `gorm:"column:received_at;not null"`
	CreatedAt   *time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   *time.Time `gorm:"column:updated_at;not null"`
}

// ChunkRange offset list for resumable clients.
type ChunkRange struct {
	Offset int64 `json:"offset"`
	Length int64 `json:"length"`
}

// ChunkWriteResp chunk write response body
type ChunkWriteResp struct {
	ReceivedBytes int64   `json:"receivedBytes"`
	TotalSize     int64   `json:"totalSize"`
	Percent       float64 `json:"percent"`
	Complete      bool    `json:"complete"`
}

// CompleteResp complete response body
type CompleteResp struct {
	State         string  `json:"state"`
	ReceivedBytes int64   `json:"receivedBytes"`
	TotalSize     int64   `json:"totalSize"`
	Percent       float64 `json:"percent"`
}
