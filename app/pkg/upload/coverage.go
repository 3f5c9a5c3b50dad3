package upload

import (
	"sort"

	"github.com/trackvault/trackvault/app/models"
)

// Coverage summarizes the byte ranges a session has durably received.
type Coverage struct {
	ReceivedBytes int64
	TotalSize     int64
	Ranges        []models.ChunkRange
}

func (c Coverage) Complete() bool {
	return c.TotalSize > 0 && c.ReceivedBytes == c.TotalSize
}

func (c Coverage) Percent() float64 {
	if c.TotalSize == 0 {
		return 0
	}
	return float64(c.ReceivedBytes) / float64(c.TotalSize) * 100
}

// BuildCoverage folds chunk records into merged, sorted, non-overlapping
// ranges. Records are persisted overlap-free, so adjacent merge is enough.
func BuildCoverage(chunks []models.ChunkRecord, totalSize int64) Coverage {
	sorted := make([]models.ChunkRecord, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ByteOffset < sorted[j].ByteOffset })

	cov := Coverage{TotalSize: totalSize}
	for _, c := range sorted {
		cov.ReceivedBytes += c.ByteLength
		n := len(cov.Ranges)
		if n > 0 && cov.Ranges[n-1].Offset+cov.Ranges[n-1].Length == c.ByteOffset {
			cov.Ranges[n-1].Length += c.ByteLength
			continue
		}
		cov.Ranges = append(cov.Ranges, models.ChunkRange{Offset: c.ByteOffset, Length: c.ByteLength})
	}
	return cov
}

// checkWrite validates a candidate range against existing records. A repeat
// of an identical range is an idempotent replay; any partial intersection,
// including a different length at a known offset, is an overlap.
func checkWrite(chunks []models.ChunkRecord, offset, length, totalSize int64) error {
	if length <= 0 || offset < 0 || offset+length > totalSize {
		return ErrChunkOverlap
	}
	end := offset + length
	for _, c := range chunks {
		cEnd := c.ByteOffset + c.ByteLength
		if offset == c.ByteOffset && length == c.ByteLength {
			continue // idempotent replay
		}
		if offset < cEnd && c.ByteOffset < end {
			return ErrChunkOverlap
		}
	}
	return nil
}
