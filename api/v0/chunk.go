package v0

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/base"
	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/app/pkg/utils"
	"github.com/trackvault/trackvault/app/pkg/web"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

const (
	chunkLockExpireSec = 120
	// chunks are buffered once so storage retries never replay a spent reader
	maxChunkBody = 64 << 20
)

// WriteChunkHandler stores one byte range
//
//	@Summary      write chunk
//	@Description  durably stores the request body at the given byte offset
//	@Tags         chunk
//	@Accept       application/octet-stream
//	@Param        uid     path   string  true  "session uid"
//	@Param        offset  query  int     true  "byte offset of this chunk"
//	@Produce      application/json
//	@Success      200  {object}  web.Response{data=models.ChunkWriteResp}
//	@Router       /api/trackvault/v0/session/{uid}/chunk [put]
func WriteChunkHandler(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		web.ParamsError(c, upload.CodeInvalidFormat, "uid must be an integer")
		return
	}
	offset, err := strconv.ParseInt(c.Query("offset"), 10, 64)
	if err != nil || offset < 0 {
		web.ParamsError(c, upload.CodeInvalidFormat, "offset must be a non-negative integer")
		return
	}
	length := c.Request.ContentLength
	if length <= 0 {
		web.ParamsError(c, upload.CodeInvalidFormat, "chunk body requires a known, positive content length")
		return
	}
	if length > maxChunkBody {
		web.ParamsError(c, upload.CodeInvalidFormat,
			fmt.Sprintf("chunk body exceeds the %d byte limit, split it", maxChunkBody))
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, length))
	if err != nil {
		web.ParamsError(c, upload.CodeInvalidFormat, "failed to read chunk body")
		return
	}
	if int64(len(body)) != length {
		web.ParamsError(c, upload.CodeInvalidFormat, "chunk body shorter than declared content length")
		return
	}

	// One offset, one writer, cluster wide. A concurrent duplicate of the
	// same range backs off instead of racing the blob write.
	ctx := context.Context(c)
	lgRedis := new(plugins.LangGoRedis).NewRedis()
	chunkLock := base.NewRedisLock(&ctx, lgRedis, fmt.Sprintf(utils.ChunkLockKeyFmt, uid, offset))
	chunkLock.SetExpire(chunkLockExpireSec)
	if flag, err := chunkLock.Acquire(); err != nil || !flag {
		web.Conflict(c, upload.CodeChunkOverlap, "another write for this offset is in flight")
		return
	}
	defer func() { _, _ = chunkLock.Release() }()

	// Storage faults are retried here with backoff; the write is
	// idempotent so a replayed attempt is harmless.
	var cov upload.Coverage
	writeErr := retry.Do(ctx, retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond)),
		func(ctx context.Context) error {
			var werr error
			cov, werr = receiver.WriteChunk(ctx, uid, offset, bytes.NewReader(body), length)
			if errors.Is(werr, upload.ErrStorageWrite) {
				return retry.RetryableError(werr)
			}
			return werr
		})
	if writeErr != nil {
		lgLogger.WithContext(c).Warn("chunk write rejected",
			zap.Int64("sessionUid", uid), zap.Int64("offset", offset), zap.Error(writeErr))
		writeUploadError(c, writeErr)
		return
	}

	web.Success(c, models.ChunkWriteResp{
		ReceivedBytes: cov.ReceivedBytes,
		TotalSize:     cov.TotalSize,
		Percent:       cov.Percent(),
		Complete:      cov.Complete(),
	})
}
