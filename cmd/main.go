package main

import (
	"github.com/trackvault/trackvault/api"
	v0 "github.com/trackvault/trackvault/api/v0"
	"github.com/trackvault/trackvault/app"
	"github.com/trackvault/trackvault/app/pkg/base"
	"github.com/trackvault/trackvault/app/pkg/storage"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/bootstrap/plugins"
)

// @title		TrackVault
// @version	1.0
// @description	chunked audio upload and processing pipeline
// @host			127.0.0.1:8888
// @BasePath		/
func main() {
	// config log
	lgConfig := bootstrap.NewConfig("conf/config.yaml")
	lgLogger := bootstrap.NewLogger()

	// plugins DB Redis object storage
	plugins.NewPlugins()
	defer plugins.ClosePlugins()

	// init Snowflake
	base.InitSnowFlake()

	// init storage
	storage.InitStorage(lgConfig)

	// wire the upload pipeline
	pipeline := app.BuildPipeline(lgConfig, lgLogger)
	v0.Setup(lgLogger, pipeline.Receiver, pipeline.Status, pipeline.Notifier)

	// router
	engine := api.NewRouter(lgConfig, lgLogger)
	server := app.NewHttpServer(lgConfig, engine)

	// app run-server
	application := app.NewApp(lgConfig, lgLogger.Logger, server, pipeline.Expirer)
	application.RunServer()
}
