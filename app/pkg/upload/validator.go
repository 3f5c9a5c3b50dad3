package upload

import (
	"fmt"
	"strings"

	"github.com/trackvault/trackvault/app/pkg/utils"
)

// AllowedContentTypes is the audio allow-list for new sessions.
var AllowedContentTypes = []string{
	"audio/mpeg",
	"audio/wav",
	"audio/x-wav",
	"audio/flac",
	"audio/aac",
	"audio/ogg",
}

// Validator gates session creation and the first bytes of an upload.
type Validator struct {
	MaxFileSize int64
}

// ValidateDeclaration checks the metadata declared when a session is opened.
func (v *Validator) ValidateDeclaration(fileName, contentType string, totalSize int64, checksum string) error {
	if !utils.Contains(strings.ToLower(contentType), AllowedContentTypes) {
		return &Error{Code: CodeInvalidFormat, Message: fmt.Sprintf("content type %q is not an accepted audio format", contentType)}
	}
	if fileName == "" {
		return &Error{Code: CodeInvalidFormat, Message: "file name is required"}
	}
	if totalSize <= 0 {
		return &Error{Code: CodeInvalidFormat, Message: "total size must be positive"}
	}
	if totalSize > v.MaxFileSize {
		return &Error{Code: CodeFileTooLarge, Message: fmt.Sprintf("declared size %d exceeds limit %d", totalSize, v.MaxFileSize)}
	}
	if checksum != "" && !isSha256Hex(checksum) {
		return &Error{Code: CodeInvalidFormat, Message: "checksum must be 64 hex characters (sha256)"}
	}
	return nil
}

// SniffLeading inspects the first bytes of the file, available once the
// chunk at offset zero arrives, and rejects bodies whose magic bytes do not
// match the declared content type. Heads too short to judge pass through;
// the checksum phase is the final arbiter.
func (v *Validator) SniffLeading(contentType string, head []byte) error {
	if len(head) < 4 {
		return nil
	}
	ok := true
	switch strings.ToLower(contentType) {
	case "audio/mpeg":
		ok = hasPrefix(head, "ID3") || isMpegSync(head)
	case "audio/wav", "audio/x-wav":
		ok = hasPrefix(head, "RIFF") && (len(head) < 12 || string(head[8:12]) == "WAVE")
	case "audio/flac":
		ok = hasPrefix(head, "fLaC")
	case "audio/ogg":
		ok = hasPrefix(head, "OggS")
	case "audio/aac":
		ok = isAdtsSync(head) || hasPrefix(head, "ID3")
	}
	if !ok {
		return &Error{Code: CodeInvalidFormat, Message: fmt.Sprintf("leading bytes do not match declared type %q", contentType)}
	}
	return nil
}

func hasPrefix(b []byte, s string) bool {
	return len(b) >= len(s) && string(b[:len(s)]) == s
}

// isMpegSync matches the 11-bit MPEG frame sync word.
func isMpegSync(b []byte) bool {
	return b[0] == 0xFF && b[1]&0xE0 == 0xE0
}

// isAdtsSync matches the ADTS fixed header used by raw AAC streams.
func isAdtsSync(b []byte) bool {
	return b[0] == 0xFF && b[1]&0xF6 == 0xF0
}

func isSha256Hex(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
