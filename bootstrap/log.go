package bootstrap

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trackvault/trackvault/config"
	"github.com/trackvault/trackvault/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const loggerKey = iota

var (
	level    zapcore.Level
	options  []zap.Option
	lgLogger = new(LangGoLogger)
)

// LangGoLogger wraps the zap logger and its context helpers.
type LangGoLogger struct {
	Logger *zap.Logger
	Once   *sync.Once
}

func newLangGoLogger() *LangGoLogger {
	return &LangGoLogger{
		Logger: &zap.Logger{},
		Once:   &sync.Once{},
	}
}

// NewLogger returns the shared logger, initializing it on first use.
func NewLogger() *LangGoLogger {
	if lgLogger.Logger != nil {
		return lgLogger
	}
	lgLogger = newLangGoLogger()
	lgLogger.initLangGoLogger(lgConfig.Conf)
	return lgLogger
}

func (lg *LangGoLogger) initLangGoLogger(conf *config.Configuration) {
	lg.Once.Do(
		func() {
			lg.Logger = initializeLog(conf)
		},
	)
}

// NewContext stores a field-enriched logger on the gin context so every
// handler down the chain logs with the same trace id.
func (lg *LangGoLogger) NewContext(ctx *gin.Context, fields ...zapcore.Field) {
	ctx.Set(strconv.Itoa(loggerKey), lg.WithContext(ctx).With(fields...))
}

// WithContext returns the context-scoped logger, or the root logger when the
// context carries none.
func (lg *LangGoLogger) WithContext(ctx *gin.Context) *zap.Logger {
	if ctx == nil {
		return lg.Logger
	}
	l, _ := ctx.Get(strconv.Itoa(loggerKey))
	ctxLogger, ok := l.(*zap.Logger)
	if ok {
		return ctxLogger
	}
	return lg.Logger
}

func initializeLog(conf *config.Configuration) *zap.Logger {
	createRootDir(conf)
	setLogLevel(conf)

	if conf.Log.ShowLine {
		options = append(options, zap.AddCaller())
	}
	return zap.New(getZapCore(conf), options...)
}

func createRootDir(conf *config.Configuration) {
	logFileDir := conf.Log.RootDir
	if !filepath.IsAbs(logFileDir) {
		logFileDir = filepath.Join(rootPath, logFileDir)
	}

	if ok, _ := utils.Exists(logFileDir); !ok {
		_ = os.Mkdir(conf.Log.RootDir, os.ModePerm)
	}
}

func setLogLevel(conf *config.Configuration) {
	switch conf.Log.Level {
	case "debug":
		level = zap.DebugLevel
		options = append(options, zap.AddStacktrace(level))
	case "info":
		level = zap.InfoLevel
	case "warn":
		level = zap.WarnLevel
	case "error":
		level = zap.ErrorLevel
		options = append(options, zap.AddStacktrace(level))
	case "dpanic":
		level = zap.DPanicLevel
	case "panic":
		level = zap.PanicLevel
	case "fatal":
		level = zap.FatalLevel
	default:
		level = zap.InfoLevel
	}
}

func getZapCore(conf *config.Configuration) zapcore.Core {
	var encoder zapcore.Encoder

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(time time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(time.Format("[" + "2006-01-02 15:04:05.000" + "]"))
	}
	encoderConfig.EncodeLevel = func(l zapcore.Level, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(conf.App.Env + "." + l.String())
	}

	if conf.Log.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	// file and stdout together when file logging is enabled
	var multiWS zapcore.WriteSyncer
	if conf.Log.EnableFile {
		multiWS = zapcore.NewMultiWriteSyncer(getLogWriter(conf), zapcore.AddSync(os.Stdout))
	} else {
		multiWS = zapcore.AddSync(os.Stdout)
	}

	return zapcore.NewCore(encoder, multiWS, level)
}

func getLogWriter(conf *config.Configuration) zapcore.WriteSyncer {
	file := &lumberjack.Logger{
		Filename:   conf.Log.RootDir + "/" + conf.Log.Filename,
		MaxSize:    conf.Log.MaxSize,
		MaxBackups: conf.Log.MaxBackups,
		MaxAge:     conf.Log.MaxAge,
		Compress:   conf.Log.Compress,
	}
	return zapcore.AddSync(file)
}
