package audio

import (
	"errors"
	"io"

	"github.com/dhowden/tag"
)

// Info is the technical and descriptive metadata extracted from a track.
type Info struct {
	DurationSec float64
	SampleRate  int
	Channels    int
	BitRate     int // bits per second, averaged over the whole file
	Title       string
	Artist      string
	Album       string
}

// Probe reads tags and stream parameters from a complete audio file. Tag
// failures are tolerated; the technical parameters are the hard part. For
// formats without a decoder only the tags and the declared size survive.
func Probe(rs io.ReadSeeker, contentType string, size int64) (*Info, error) {
	info := &Info{}

	if m, err := tag.ReadFrom(rs); err == nil {
		info.Title = m.Title()
		info.Artist = m.Artist()
		info.Album = m.Album()
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	s, err := Open(contentType, rs)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return info, nil
		}
		return nil, err
	}
	info.SampleRate = s.SampleRate()
	info.Channels = s.Channels()

	frames := s.TotalSamples()
	if frames == 0 {
		frames, err = drainFrames(s)
		if err != nil {
			return nil, err
		}
	}
	if info.SampleRate > 0 {
		info.DurationSec = float64(frames) / float64(info.SampleRate)
	}
	if info.DurationSec > 0 {
		info.BitRate = int(float64(size*8) / info.DurationSec)
	}
	return info, nil
}

// drainFrames counts frames by decoding to the end, for containers that do
// not declare a length up front.
func drainFrames(s Stream) (int64, error) {
	buf := make([]int16, 8192)
	var samples int64
	for {
		n, err := s.Read(buf)
		samples += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			break
		}
	}
	ch := int64(s.Channels())
	if ch == 0 {
		ch = 1
	}
	return samples / ch, nil
}
