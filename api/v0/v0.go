package v0

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/app/pkg/web"
	"github.com/trackvault/trackvault/bootstrap"
)

// Wired once from main before the router starts serving.
var (
	lgLogger *bootstrap.LangGoLogger
	receiver *upload.Receiver
	status   *upload.StatusReader
	notifier *upload.Notifier
)

// Setup injects the pipeline components the handlers call into.
func Setup(logger *bootstrap.LangGoLogger, r *upload.Receiver, s *upload.StatusReader, n *upload.Notifier) {
	lgLogger = logger
	receiver = r
	status = s
	notifier = n
}

// writeUploadError maps the pipeline error taxonomy onto transport
// semantics. The stable code always rides in the body.
func writeUploadError(c *gin.Context, err error) {
	code := upload.CodeOf(err)
	switch {
	case errors.Is(err, upload.ErrSessionNotFound):
		web.NotFoundResource(c, code, err.Error())
	case errors.Is(err, upload.ErrSessionExpired):
		web.Gone(c, code, err.Error())
	case errors.Is(err, upload.ErrChunkOverlap), errors.Is(err, upload.ErrSessionClosed):
		web.Conflict(c, code, err.Error())
	case errors.Is(err, upload.ErrInvalidFormat),
		errors.Is(err, upload.ErrFileTooLarge),
		errors.Is(err, upload.ErrCoverageGap),
		errors.Is(err, upload.ErrChecksumMismatch):
		web.ParamsError(c, code, err.Error())
	default:
		web.InternalError(c, code, err.Error())
	}
}
