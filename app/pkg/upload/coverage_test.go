package upload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackvault/trackvault/app/models"
)

func rec(offset, length int64) models.ChunkRecord {
	return models.ChunkRecord{ByteOffset: offset, ByteLength: length}
}

func TestBuildCoverageMergesAdjacent(t *testing.T) {
	cov := BuildCoverage([]models.ChunkRecord{rec(100, 50), rec(0, 100), rec(200, 10)}, 300)
	assert.Equal(t, int64(160), cov.ReceivedBytes)
	assert.False(t, cov.Complete())
	require.Len(t, cov.Ranges, 2)
	assert.Equal(t, models.ChunkRange{Offset: 0, Length: 150}, cov.Ranges[0])
	assert.Equal(t, models.ChunkRange{Offset: 200, Length: 10}, cov.Ranges[1])
}

func TestBuildCoverageEmpty(t *testing.T) {
	cov := BuildCoverage(nil, 100)
	assert.Zero(t, cov.ReceivedBytes)
	assert.Empty(t, cov.Ranges)
	assert.False(t, cov.Complete())
	assert.Zero(t, cov.Percent())
}

func TestCheckWrite(t *testing.T) {
	existing := []models.ChunkRecord{rec(0, 100), rec(200, 100)}

	assert.NoError(t, checkWrite(existing, 100, 100, 300))
	assert.NoError(t, checkWrite(existing, 0, 100, 300), "identical replay is accepted")

	assert.ErrorIs(t, checkWrite(existing, 50, 100, 300), ErrChunkOverlap)
	assert.ErrorIs(t, checkWrite(existing, 0, 150, 300), ErrChunkOverlap, "same offset, longer range")
	assert.ErrorIs(t, checkWrite(existing, 250, 100, 400), ErrChunkOverlap, "tail intersection")
	assert.ErrorIs(t, checkWrite(existing, 250, 100, 300), ErrChunkOverlap, "past end of file")
	assert.ErrorIs(t, checkWrite(existing, -1, 10, 300), ErrChunkOverlap)
	assert.ErrorIs(t, checkWrite(existing, 100, 0, 300), ErrChunkOverlap)
}

// Coverage is complete exactly when a random disjoint partition of the file
// has been fully applied, regardless of arrival order.
func TestCoveragePartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		total := int64(rng.Intn(1<<16) + 1)
		var parts []models.ChunkRecord
		for off := int64(0); off < total; {
			length := int64(rng.Intn(4096) + 1)
			if off+length > total {
				length = total - off
			}
			parts = append(parts, rec(off, length))
			off += length
		}
		rng.Shuffle(len(parts), func(i, j int) { parts[i], parts[j] = parts[j], parts[i] })

		var applied []models.ChunkRecord
		for i, p := range parts {
			require.NoError(t, checkWrite(applied, p.ByteOffset, p.ByteLength, total))
			applied = append(applied, p)
			cov := BuildCoverage(applied, total)
			if i < len(parts)-1 {
				assert.False(t, cov.Complete(), "complete before all parts arrived")
			}
		}
		cov := BuildCoverage(applied, total)
		assert.True(t, cov.Complete())
		assert.Equal(t, total, cov.ReceivedBytes)
		require.Len(t, cov.Ranges, 1)
		assert.Equal(t, models.ChunkRange{Offset: 0, Length: total}, cov.Ranges[0])
	}
}
