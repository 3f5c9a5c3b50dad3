package v0

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/app/pkg/utils"
	"github.com/trackvault/trackvault/app/pkg/web"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	watchWriteWait = 10 * time.Second
	watchPingEvery = 30 * time.Second
)

// ProgressHandler derived progress snapshot
//
//	@Summary      session progress
//	@Description  state, persisted coverage and processing job outcomes
//	@Tags         progress
//	@Accept       application/json
//	@Param        uid  path  string  true  "session uid"
//	@Produce      application/json
//	@Success      200  {object}  web.Response{data=upload.Progress}
//	@Router       /api/trackvault/v0/session/{uid}/progress [get]
func ProgressHandler(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		web.ParamsError(c, upload.CodeInvalidFormat, "uid must be an integer")
		return
	}

	lgRedis := new(plugins.LangGoRedis).NewRedis()
	cacheKey := fmt.Sprintf(utils.ProgressCacheKeyFmt, uid)
	if val, err := lgRedis.Get(c, cacheKey).Bytes(); err == nil {
		var snap upload.Progress
		if json.Unmarshal(val, &snap) == nil {
			web.Success(c, snap)
			return
		}
	}

	snap, err := status.Snapshot(c, uid)
	if err != nil {
		writeUploadError(c, err)
		return
	}
	// Terminal states never move again, only those are safe to cache.
	if models.TerminalSessionState(snap.State) {
		if raw, err := json.Marshal(snap); err == nil {
			lgRedis.SetEX(c, cacheKey, raw, utils.ProgressCacheTTLSec*time.Second)
		}
	}
	web.Success(c, snap)
}

// WatchProgressHandler websocket progress push
//
//	@Summary      watch session progress
//	@Description  upgrades to websocket and pushes progress events as they happen
//	@Tags         progress
//	@Param        uid  path  string  true  "session uid"
//	@Router       /api/trackvault/v0/session/{uid}/progress/watch [get]
func WatchProgressHandler(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		web.ParamsError(c, upload.CodeInvalidFormat, "uid must be an integer")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		lgLogger.WithContext(c).Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Subscribing to an unknown session is fine: the client gets the
	// not-found snapshot below and can decide to hang on or leave.
	events, cancel := notifier.Subscribe(uid)
	defer cancel()

	if snap, err := status.Snapshot(c, uid); err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
	}

	// Drain client frames so pongs and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(watchPingEvery)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}
