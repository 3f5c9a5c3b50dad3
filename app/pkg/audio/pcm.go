package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupported marks formats the decoders cannot turn into PCM. Metadata
// for those still comes from the tag reader.
var ErrUnsupported = errors.New("no pcm decoder for this format")

// Stream is a decoded PCM source. Read fills p with interleaved signed
// 16-bit samples and reports frames via n/Channels(). TotalSamples is
// frames per channel, zero when the container does not declare it.
type Stream interface {
	SampleRate() int
	Channels() int
	TotalSamples() int64
	Read(p []int16) (int, error)
}

// Open picks a decoder by content type. The reader must sit at the start
// of the file.
func Open(contentType string, rs io.ReadSeeker) (Stream, error) {
	switch strings.ToLower(contentType) {
	case "audio/wav", "audio/x-wav":
		return newWavStream(rs)
	case "audio/mpeg":
		return newMp3Stream(rs)
	case "audio/flac":
		return newFlacStream(rs)
	case "audio/ogg":
		return newOggStream(rs)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
}

type wavStream struct {
	d     *wav.Decoder
	total int64
	buf   *gaudio.IntBuffer
}

func newWavStream(rs io.ReadSeeker) (*wavStream, error) {
	d := wav.NewDecoder(rs)
	d.ReadInfo()
	if !d.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("seek pcm chunk: %w", err)
	}
	bytesPerFrame := int64(d.NumChans) * int64(d.BitDepth) / 8
	var total int64
	if bytesPerFrame > 0 {
		total = d.PCMLen() / bytesPerFrame
	}
	return &wavStream{d: d, total: total}, nil
}

func (s *wavStream) SampleRate() int     { return int(s.d.SampleRate) }
func (s *wavStream) Channels() int       { return int(s.d.NumChans) }
func (s *wavStream) TotalSamples() int64 { return s.total }

func (s *wavStream) Read(p []int16) (int, error) {
	if s.buf == nil || len(s.buf.Data) != len(p) {
		s.buf = &gaudio.IntBuffer{
			Data:           make([]int, len(p)),
			Format:         &gaudio.Format{NumChannels: int(s.d.NumChans), SampleRate: int(s.d.SampleRate)},
			SourceBitDepth: int(s.d.BitDepth),
		}
	}
	n, err := s.d.PCMBuffer(s.buf)
	for i := 0; i < n; i++ {
		p[i] = scaleTo16(s.buf.Data[i], int(s.d.BitDepth))
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}

// scaleTo16 converts a sample at the source bit depth to signed 16-bit.
func scaleTo16(v, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(v)
	case bitDepth == 8:
		// wav 8-bit is unsigned
		return int16((v - 128) << 8)
	case bitDepth > 16:
		return int16(v >> uint(bitDepth-16))
	default:
		return int16(v << uint(16-bitDepth))
	}
}

type mp3Stream struct {
	d        *mp3.Decoder
	scratch  []byte
	carry    byte
	hasCarry bool
}

func newMp3Stream(rs io.ReadSeeker) (*mp3Stream, error) {
	d, err := mp3.NewDecoder(rs)
	if err != nil {
		return nil, fmt.Errorf("open mp3: %w", err)
	}
	return &mp3Stream{d: d}, nil
}

func (s *mp3Stream) SampleRate() int { return s.d.SampleRate() }

// go-mp3 always emits 16-bit stereo.
func (s *mp3Stream) Channels() int { return 2 }

func (s *mp3Stream) TotalSamples() int64 { return s.d.Length() / 4 }

func (s *mp3Stream) Read(p []int16) (int, error) {
	need := len(p) * 2
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}
	buf := s.scratch[:need]
	off := 0
	if s.hasCarry {
		buf[0] = s.carry
		off = 1
		s.hasCarry = false
	}
	n, err := s.d.Read(buf[off:])
	total := off + n
	if total%2 == 1 {
		s.carry = buf[total-1]
		s.hasCarry = true
		total--
	}
	for i := 0; i < total/2; i++ {
		p[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	if err == io.EOF && total > 0 {
		err = nil
	}
	return total / 2, err
}

type flacStream struct {
	s       *flac.Stream
	pending []int16
}

func newFlacStream(rs io.ReadSeeker) (*flacStream, error) {
	s, err := flac.New(rs)
	if err != nil {
		return nil, fmt.Errorf("open flac: %w", err)
	}
	return &flacStream{s: s}, nil
}

func (s *flacStream) SampleRate() int     { return int(s.s.Info.SampleRate) }
func (s *flacStream) Channels() int       { return int(s.s.Info.NChannels) }
func (s *flacStream) TotalSamples() int64 { return int64(s.s.Info.NSamples) }

func (s *flacStream) Read(p []int16) (int, error) {
	for len(s.pending) == 0 {
		fr, err := s.s.ParseNext()
		if err != nil {
			return 0, err
		}
		if len(fr.Subframes) == 0 {
			continue
		}
		bps := int(s.s.Info.BitsPerSample)
		blockLen := len(fr.Subframes[0].Samples)
		channels := len(fr.Subframes)
		for i := 0; i < blockLen; i++ {
			for ch := 0; ch < channels; ch++ {
				s.pending = append(s.pending, scaleFlac(fr.Subframes[ch].Samples[i], bps))
			}
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func scaleFlac(v int32, bps int) int16 {
	switch {
	case bps == 16:
		return int16(v)
	case bps > 16:
		return int16(v >> uint(bps-16))
	default:
		return int16(v << uint(16-bps))
	}
}

type oggStream struct {
	r   *oggvorbis.Reader
	buf []float32
}

func newOggStream(rs io.ReadSeeker) (*oggStream, error) {
	r, err := oggvorbis.NewReader(rs)
	if err != nil {
		return nil, fmt.Errorf("open ogg: %w", err)
	}
	return &oggStream{r: r}, nil
}

func (s *oggStream) SampleRate() int     { return s.r.SampleRate() }
func (s *oggStream) Channels() int       { return s.r.Channels() }
func (s *oggStream) TotalSamples() int64 { return s.r.Length() }

func (s *oggStream) Read(p []int16) (int, error) {
	if cap(s.buf) < len(p) {
		s.buf = make([]float32, len(p))
	}
	n, err := s.r.Read(s.buf[:len(p)])
	for i := 0; i < n; i++ {
		v := s.buf[i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		p[i] = int16(v * 32767)
	}
	return n, err
}
