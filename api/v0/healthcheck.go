package v0

import (
	"github.com/gin-gonic/gin"

	"github.com/trackvault/trackvault/app/pkg/web"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

// PingHandler connectivity probe
//
//	@Summary      ping
//	@Description  checks database and redis connectivity
//	@Tags         health
//	@Accept       application/json
//	@Produce      application/json
//	@Success      200  {object}  web.Response
//	@Router       /api/trackvault/v0/ping [get]
func PingHandler(c *gin.Context) {
	var lgDB = new(plugins.LangGoDB).Use("default").NewDB()
	var lgRedis = new(plugins.LangGoRedis).NewRedis()

	lgDB.Exec("select now();")
	if err := lgRedis.Ping(c).Err(); err != nil {
		web.InternalError(c, "Internal", "redis unreachable")
		return
	}
	web.Success(c, "pong")
}

// HealthCheckHandler liveness probe
//
//	@Summary      health
//	@Description  liveness check
//	@Tags         health
//	@Accept       application/json
//	@Produce      application/json
//	@Success      200  {object}  web.Response
//	@Router       /api/trackvault/v0/health [get]
func HealthCheckHandler(c *gin.Context) {
	web.Success(c, "Health...")
}
