package audio

import (
	"errors"
	"io"
	"math"
)

// waveformBlock is the fixed accumulation granularity in frames. Block RMS
// values are resampled to the requested point count afterwards, so the
// whole file never sits in memory.
const waveformBlock = 2048

// Waveform computes a fixed number of loudness points over the stream.
// Each point is the RMS of its slice of the track, min-max normalized to
// [0,1]. A silent or constant track yields all zeros.
func Waveform(s Stream, points int) ([]float64, error) {
	if points <= 0 {
		return nil, errors.New("points must be positive")
	}
	channels := s.Channels()
	if channels <= 0 {
		channels = 1
	}

	var blocks []float64
	buf := make([]int16, waveformBlock*channels)
	var sumSq float64
	var frames int
	for {
		n, err := s.Read(buf)
		for i := 0; i+channels <= n; i += channels {
			// mono mix before squaring
			var mix float64
			for ch := 0; ch < channels; ch++ {
				mix += float64(buf[i+ch])
			}
			mix /= float64(channels) * 32768
			sumSq += mix * mix
			frames++
			if frames == waveformBlock {
				blocks = append(blocks, math.Sqrt(sumSq/float64(frames)))
				sumSq, frames = 0, 0
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	if frames > 0 {
		blocks = append(blocks, math.Sqrt(sumSq/float64(frames)))
	}
	if len(blocks) == 0 {
		return make([]float64, points), nil
	}
	return normalize(resample(blocks, points)), nil
}

// resample averages blocks into exactly n buckets. Shorter inputs repeat
// block values rather than interpolate; precision there is not worth it.
func resample(blocks []float64, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i * len(blocks) / n
		hi := (i + 1) * len(blocks) / n
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(blocks) {
			hi = len(blocks)
		}
		var sum float64
		for _, v := range blocks[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

func normalize(points []float64) []float64 {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range points {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	span := max - min
	if span == 0 {
		return make([]float64, len(points))
	}
	out := make([]float64, len(points))
	for i, v := range points {
		out[i] = (v - min) / span
	}
	return out
}
