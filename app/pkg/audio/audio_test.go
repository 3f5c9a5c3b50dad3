package audio

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWavFile encodes 16-bit PCM samples to a scratch wav file.
func writeWavFile(t *testing.T, samples []int, rate, channels int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	require.NoError(t, enc.Write(&gaudio.IntBuffer{
		Data:           samples,
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func sine(frames, rate int, freq float64, amp int) []int {
	out := make([]int, frames)
	for i := range out {
		out[i] = int(float64(amp) * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func openWav(t *testing.T, path string) (Stream, *os.File) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	s, err := Open("audio/wav", f)
	require.NoError(t, err)
	return s, f
}

func TestOpenWavStream(t *testing.T) {
	const rate = 8000
	path := writeWavFile(t, sine(rate, rate, 440, 20000), rate, 1)
	s, f := openWav(t, path)
	defer f.Close()

	assert.Equal(t, rate, s.SampleRate())
	assert.Equal(t, 1, s.Channels())
	assert.Equal(t, int64(rate), s.TotalSamples())

	var total int
	buf := make([]int16, 1024)
	for {
		n, err := s.Read(buf)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if n == 0 {
			break
		}
	}
	assert.Equal(t, rate, total)
}

func TestOpenUnsupportedFormat(t *testing.T) {
	path := writeWavFile(t, sine(100, 8000, 440, 1000), 8000, 1)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = Open("audio/aac", f)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestProbeWav(t *testing.T) {
	const rate = 8000
	path := writeWavFile(t, sine(rate*2, rate, 440, 20000), rate, 1)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	st, err := f.Stat()
	require.NoError(t, err)

	info, err := Probe(f, "audio/wav", st.Size())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, info.DurationSec, 0.01)
	assert.Equal(t, rate, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Greater(t, info.BitRate, 0)
}

// memStream feeds the analysis code directly, no container involved.
type memStream struct {
	rate, channels int
	data           []int16
	pos            int
}

func (m *memStream) SampleRate() int     { return m.rate }
func (m *memStream) Channels() int       { return m.channels }
func (m *memStream) TotalSamples() int64 { return int64(len(m.data) / m.channels) }
func (m *memStream) Read(p []int16) (int, error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func TestWaveformQuietThenLoud(t *testing.T) {
	const rate = 8000
	data := make([]int16, rate*4)
	for i := rate * 2; i < len(data); i++ {
		data[i] = int16(20000 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}
	points, err := Waveform(&memStream{rate: rate, channels: 1, data: data}, 100)
	require.NoError(t, err)
	require.Len(t, points, 100)

	assert.InDelta(t, 0, points[2], 0.01, "quiet half maps near zero")
	assert.Greater(t, points[97], 0.9, "loud half maps near one")
	for _, v := range points {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestWaveformSilenceIsAllZeros(t *testing.T) {
	points, err := Waveform(&memStream{rate: 8000, channels: 2, data: make([]int16, 8000*2)}, 50)
	require.NoError(t, err)
	require.Len(t, points, 50)
	for _, v := range points {
		assert.Zero(t, v)
	}
}

func TestWaveformEmptyStream(t *testing.T) {
	points, err := Waveform(&memStream{rate: 8000, channels: 1}, 10)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 10), points)
}

func TestRenderPreviewWindowAndFades(t *testing.T) {
	const rate = 8000
	// 10 seconds of steady tone; the clip should start 25% in.
	src := &memStream{rate: rate, channels: 1, data: make([]int16, rate*10)}
	for i := range src.data {
		src.data[i] = 10000
	}

	path := filepath.Join(t.TempDir(), "preview.wav")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, RenderPreview(src, out, 2, 100))
	require.NoError(t, out.Close())

	s, f := openWav(t, path)
	defer f.Close()
	assert.Equal(t, rate, s.SampleRate())
	assert.Equal(t, int64(rate*2), s.TotalSamples(), "two second clip")

	clip := make([]int16, rate*2)
	total := 0
	buf := make([]int16, 1024)
	for {
		n, err := s.Read(buf)
		copy(clip[total:], buf[:n])
		total += n
		if err == io.EOF || n == 0 {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, rate*2, total)

	assert.Equal(t, int16(0), clip[0], "fade-in starts at zero")
	assert.Equal(t, int16(10000), clip[rate], "middle at full level")
	assert.InDelta(t, 0, clip[total-1], 200, "fade-out ends near zero")
}

func TestRenderPreviewShortTrack(t *testing.T) {
	const rate = 8000
	src := &memStream{rate: rate, channels: 1, data: make([]int16, rate)} // one second
	for i := range src.data {
		src.data[i] = 5000
	}
	path := filepath.Join(t.TempDir(), "short.wav")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, RenderPreview(src, out, 30, 500))
	require.NoError(t, out.Close())

	s, f := openWav(t, path)
	defer f.Close()
	assert.Equal(t, int64(rate), s.TotalSamples(), "whole short track becomes the clip")
}
