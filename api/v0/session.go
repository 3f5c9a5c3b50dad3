package v0

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/app/pkg/web"
	"github.com/trackvault/trackvault/bootstrap"
)

/*
Upload session lifecycle: open, explicit complete, held-range listing.
*/

// CreateSessionHandler opens an upload session
//
//	@Summary      create upload session
//	@Description  validates the declaration and opens a chunked upload session
//	@Tags         session
//	@Accept       application/json
//	@Param        RequestBody  body  models.SessionCreateReq  true  "session declaration"
//	@Produce      application/json
//	@Success      201  {object}  web.Response{data=models.SessionCreateResp}
//	@Router       /api/trackvault/v0/session [post]
func CreateSessionHandler(c *gin.Context) {
	req := models.SessionCreateReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		web.ParamsError(c, upload.CodeInvalidFormat, "malformed session declaration")
		return
	}

	sess, err := receiver.CreateSession(c, &req)
	if err != nil {
		writeUploadError(c, err)
		return
	}
	lgLogger.WithContext(c).Info("upload session created",
		zap.Int64("sessionUid", sess.UID), zap.String("fileName", sess.FileName),
		zap.Int64("totalSize", sess.TotalSize))

	web.Created(c, models.SessionCreateResp{
		UID:       strconv.FormatInt(sess.UID, 10),
		ChunkSize: bootstrap.NewConfig("").Upload.ChunkSize,
		State:     sess.State,
	})
}

// CompleteSessionHandler asks for assembly explicitly
//
//	@Summary      complete session
//	@Description  fires assembly when coverage is full, otherwise reports the gap
//	@Tags         session
//	@Accept       application/json
//	@Param        uid  path  string  true  "session uid"
//	@Produce      application/json
//	@Success      200  {object}  web.Response{data=models.CompleteResp}
//	@Router       /api/trackvault/v0/session/{uid}/complete [post]
func CompleteSessionHandler(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		web.ParamsError(c, upload.CodeInvalidFormat, "uid must be an integer")
		return
	}

	state, cov, err := receiver.Complete(c, uid)
	if err != nil {
		writeUploadError(c, err)
		return
	}
	web.Success(c, models.CompleteResp{
		State:         state,
		ReceivedBytes: cov.ReceivedBytes,
		TotalSize:     cov.TotalSize,
		Percent:       cov.Percent(),
	})
}

// ListChunksHandler lists held byte ranges
//
//	@Summary      list received ranges
//	@Description  merged byte ranges already persisted, for client resume diffing
//	@Tags         session
//	@Accept       application/json
//	@Param        uid  path  string  true  "session uid"
//	@Produce      application/json
//	@Success      200  {object}  web.Response{data=[]models.ChunkRange}
//	@Router       /api/trackvault/v0/session/{uid}/chunks [get]
func ListChunksHandler(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		web.ParamsError(c, upload.CodeInvalidFormat, "uid must be an integer")
		return
	}

	snap, err := status.Snapshot(c, uid)
	if err != nil {
		writeUploadError(c, err)
		return
	}
	ranges := snap.Ranges
	if ranges == nil {
		ranges = []models.ChunkRange{}
	}
	web.Success(c, ranges)
}
