package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/app/pkg/event/dispatch"
	"github.com/trackvault/trackvault/app/pkg/upload"
	"github.com/trackvault/trackvault/config"
)

// App application container
type App struct {
	conf    *config.Configuration
	logger  *zap.Logger
	httpSrv *http.Server
	expirer *upload.Expirer
}

func NewHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) *http.Server {
	return &http.Server{
		Addr:    ":" + conf.App.Port,
		Handler: router,
	}
}

func NewApp(
	conf *config.Configuration,
	logger *zap.Logger,
	httpSrv *http.Server,
	expirer *upload.Expirer,
) *App {
	return &App{
		conf:    conf,
		logger:  logger,
		httpSrv: httpSrv,
		expirer: expirer,
	}
}

// RunServer runs until interrupted, then drains the dispatcher and the
// expiry sweep before shutting the listener down.
func (a *App) RunServer() {
	a.logger.Info("start app ...")
	if err := a.Run(); err != nil {
		panic(err)
	}

	a.logger.Info("start expiry sweep ...")
	a.expirer.Start()

	a.logger.Info("start task ...")
	p, consumers := dispatch.RunTask()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("stop task ...")
	dispatch.StopTask(p, consumers)

	log.Printf("stop expiry sweep ...")
	a.expirer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Printf("shutdown app ...")
	if err := a.Stop(ctx); err != nil {
		panic(err)
	}
}

// Run starts the http server.
func (a *App) Run() error {
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
	return nil
}

// Stop shuts the http server down.
func (a *App) Stop(ctx context.Context) error {
	if err := a.httpSrv.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}
