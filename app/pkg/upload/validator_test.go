package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDeclaration(t *testing.T) {
	v := &Validator{MaxFileSize: 1 << 20}

	assert.NoError(t, v.ValidateDeclaration("track.mp3", "audio/mpeg", 1000, ""))
	assert.NoError(t, v.ValidateDeclaration("track.flac", "audio/flac", 1<<20, strings.Repeat("ab", 32)))

	assert.ErrorIs(t, v.ValidateDeclaration("doc.pdf", "application/pdf", 1000, ""), ErrInvalidFormat)
	assert.ErrorIs(t, v.ValidateDeclaration("", "audio/mpeg", 1000, ""), ErrInvalidFormat)
	assert.ErrorIs(t, v.ValidateDeclaration("t.mp3", "audio/mpeg", 0, ""), ErrInvalidFormat)
	assert.ErrorIs(t, v.ValidateDeclaration("t.mp3", "audio/mpeg", -5, ""), ErrInvalidFormat)
	assert.ErrorIs(t, v.ValidateDeclaration("t.mp3", "audio/mpeg", 1<<20+1, ""), ErrFileTooLarge)
	assert.ErrorIs(t, v.ValidateDeclaration("t.mp3", "audio/mpeg", 1000, "nothex"), ErrInvalidFormat)
	assert.ErrorIs(t, v.ValidateDeclaration("t.mp3", "audio/mpeg", 1000, strings.Repeat("g", 64)), ErrInvalidFormat)
}

func TestSniffLeading(t *testing.T) {
	v := &Validator{MaxFileSize: 1 << 20}

	wav := append([]byte("RIFF"), 0, 0, 0, 0)
	wav = append(wav, []byte("WAVE")...)

	cases := []struct {
		name        string
		contentType string
		head        []byte
		ok          bool
	}{
		{"mp3 id3", "audio/mpeg", []byte("ID3\x04\x00"), true},
		{"mp3 frame sync", "audio/mpeg", []byte{0xFF, 0xFB, 0x90, 0x00}, true},
		{"mp3 wrong magic", "audio/mpeg", []byte("OggS"), false},
		{"wav riff", "audio/wav", wav, true},
		{"wav not riff", "audio/wav", []byte("fLaC"), false},
		{"flac", "audio/flac", []byte("fLaC\x00\x00"), true},
		{"flac wrong", "audio/flac", []byte("RIFF....WAVE"), false},
		{"ogg", "audio/ogg", []byte("OggS\x00"), true},
		{"aac adts", "audio/aac", []byte{0xFF, 0xF1, 0x50, 0x80}, true},
		{"aac wrong", "audio/aac", []byte("RIFF....WAVE"), false},
		{"short head passes", "audio/mpeg", []byte("ID"), true},
		{"unknown type passes", "audio/x-unknown", []byte("whatever"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.SniffLeading(tc.contentType, tc.head)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidFormat)
			}
		})
	}
}
