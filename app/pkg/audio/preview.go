package audio

import (
	"errors"
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Preview windowing: the clip starts a quarter of the way into the track
// so it lands past the intro, and fades keep the cut points from clicking.
const (
	previewStartFraction = 0.25
	previewBitDepth      = 16
	wavFormatPCM         = 1
)

// RenderPreview decodes a clip from s and writes it to out as a 16-bit PCM
// WAV file. seconds bounds the clip length, fadeMs the linear fade in and
// out. The encoder rewrites the header on Close, hence the WriteSeeker.
func RenderPreview(s Stream, out io.WriteSeeker, seconds, fadeMs int) error {
	if seconds <= 0 {
		return errors.New("preview length must be positive")
	}
	rate := s.SampleRate()
	channels := s.Channels()
	if rate <= 0 || channels <= 0 {
		return errors.New("stream has no sample rate or channels")
	}

	var startFrame int64
	if total := s.TotalSamples(); total > 0 {
		startFrame = int64(float64(total) * previewStartFraction)
		// Short tracks still get a full-length clip when possible.
		window := int64(seconds) * int64(rate)
		if total-startFrame < window {
			startFrame = total - window
			if startFrame < 0 {
				startFrame = 0
			}
		}
	}
	if err := skipFrames(s, startFrame); err != nil {
		return fmt.Errorf("seek preview start: %w", err)
	}

	clip, err := collectFrames(s, int64(seconds)*int64(rate), channels)
	if err != nil {
		return err
	}
	if len(clip) == 0 {
		return errors.New("no samples in preview window")
	}
	applyFades(clip, channels, rate, fadeMs)

	enc := wav.NewEncoder(out, rate, previewBitDepth, channels, wavFormatPCM)
	buf := &gaudio.IntBuffer{
		Data:           clip,
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: previewBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return enc.Close()
}

func skipFrames(s Stream, frames int64) error {
	if frames <= 0 {
		return nil
	}
	channels := s.Channels()
	buf := make([]int16, 8192)
	remaining := frames * int64(channels)
	for remaining > 0 {
		want := int64(len(buf))
		if want > remaining {
			want = remaining
		}
		n, err := s.Read(buf[:want])
		remaining -= int64(n)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}

func collectFrames(s Stream, frames int64, channels int) ([]int, error) {
	want := frames * int64(channels)
	out := make([]int, 0, want)
	buf := make([]int16, 8192)
	for int64(len(out)) < want {
		n, err := s.Read(buf)
		for i := 0; i < n && int64(len(out)) < want; i++ {
			out = append(out, int(buf[i]))
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
	// Keep whole frames only.
	out = out[:len(out)/channels*channels]
	return out, nil
}

// applyFades scales the head and tail of the clip linearly to zero.
func applyFades(clip []int, channels, rate, fadeMs int) {
	fadeFrames := rate * fadeMs / 1000
	totalFrames := len(clip) / channels
	if fadeFrames <= 0 {
		return
	}
	if fadeFrames*2 > totalFrames {
		fadeFrames = totalFrames / 2
	}
	for f := 0; f < fadeFrames; f++ {
		gain := float64(f) / float64(fadeFrames)
		for ch := 0; ch < channels; ch++ {
			in := f*channels + ch
			clip[in] = int(float64(clip[in]) * gain)
			outIdx := (totalFrames-1-f)*channels + ch
			clip[outIdx] = int(float64(clip[outIdx]) * gain)
		}
	}
}
