package api

import (
	"github.com/gin-gonic/gin"
	gs "github.com/swaggo/gin-swagger"
	"github.com/swaggo/gin-swagger/swaggerFiles"

	v0 "github.com/trackvault/trackvault/api/v0"
	"github.com/trackvault/trackvault/app/middleware"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/config"
	"github.com/trackvault/trackvault/docs"
)

func NewRouter(
	conf *config.Configuration,
	lgLogger *bootstrap.LangGoLogger,
) *gin.Engine {
	if conf.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// middleware
	corsM := middleware.NewCors()
	traceL := middleware.NewTrace(lgLogger)
	requestL := middleware.NewRequestLog(lgLogger)
	panicRecover := middleware.NewPanicRecover(lgLogger)

	router.Use(corsM.Handler(), traceL.Handler(), requestL.Handler(), panicRecover.Handler())

	// swag docs
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", gs.WrapHandler(swaggerFiles.Handler))

	setApiGroupRoutes(router)

	return router
}

func setApiGroupRoutes(
	router *gin.Engine,
) *gin.RouterGroup {
	group := router.Group("/api/trackvault/v0")
	{
		// health
		group.GET("/ping", v0.PingHandler)
		group.GET("/health", v0.HealthCheckHandler)

		// session lifecycle
		group.POST("/session", v0.CreateSessionHandler)
		group.POST("/session/:uid/complete", v0.CompleteSessionHandler)
		group.GET("/session/:uid/chunks", v0.ListChunksHandler)

		// chunk writes
		group.PUT("/session/:uid/chunk", v0.WriteChunkHandler)

		// progress
		group.GET("/session/:uid/progress", v0.ProgressHandler)
		group.GET("/session/:uid/progress/watch", v0.WatchProgressHandler)
	}
	return group
}
