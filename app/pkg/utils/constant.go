package utils

const (
	WorkID = "workId"

	// buckets
	BucketTracks   = "tracks"   // assembled artifacts
	BucketParts    = "parts"    // chunk part objects
	BucketPreviews = "previews" // rendered preview clips

	// scratch space for assembly and audio processing
	ScratchDir = "/tmp/trackvault"

	// redis key "session:<uid>:chunk:<offset>:lock" guards one offset across nodes
	ChunkLockKeyFmt = "session:%d:chunk:%d:lock"
	// redis key "session:<uid>:progress" caches the last progress snapshot
	ProgressCacheKeyFmt = "session:%d:progress"
	ProgressCacheTTLSec = 30
)

// dispatch queue sizing
const (
	MaxQueue = 200
)
