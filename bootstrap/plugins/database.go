package plugins

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/trackvault/trackvault/app/models"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/config"
	"github.com/trackvault/trackvault/config/plugins"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var lgDB = map[string]*LangGoDB{}

// LangGoDB wraps one named gorm connection.
type LangGoDB struct {
	Once *sync.Once
	DB   *gorm.DB
}

func newLangGoDB() *LangGoDB {
	return &LangGoDB{
		DB:   &gorm.DB{},
		Once: &sync.Once{},
	}
}

// Use selects a named DB. Panics on an unknown name: a missing connection is
// a deployment error, not a runtime condition.
func (lg *LangGoDB) Use(dbName string) *LangGoDB {
	if db, ok := lgDB[dbName]; ok {
		return db
	}
	bootstrap.NewLogger().Logger.Error("unknown database name", zap.String("name", dbName))
	panic(dbName)
}

func (lg *LangGoDB) NewDB() *gorm.DB {
	return lg.DB
}

func (lg *LangGoDB) Name() string {
	return "DB"
}

// New initializes every configured database connection.
func (lg *LangGoDB) New() interface{} {
	conf := bootstrap.NewConfig("")
	for _, db := range conf.Database {
		lgDB[db.DBName] = newLangGoDB()
		lgDB[db.DBName].initializeDB(db, conf)
	}
	return lgDB
}

func (lg *LangGoDB) Health() {
	for dbName, db := range lgDB {
		tx := db.DB.Exec("select now();")
		if tx.Error != nil {
			bootstrap.NewLogger().Logger.Error("db connect failed",
				zap.String("name", dbName), zap.Any("err", tx.Error))
		}
	}
}

// Close .
func (lg *LangGoDB) Close() {}

// Flag .
func (lg *LangGoDB) Flag() bool { return true }

func init() {
	p := &LangGoDB{}
	RegisteredPlugin(p)
}

func (lg *LangGoDB) initializeDB(db *plugins.Database, conf *config.Configuration) {
	lg.Once.Do(func() {
		switch db.Driver {
		case "mysql":
			initMySqlGorm(db, conf)
		case "postgres":
			initPGGorm(db, conf)
		default:
			initMySqlGorm(db, conf)
		}
	})
}

func initPGGorm(dbConfig *plugins.Database, conf *config.Configuration) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConfig.Host,
		dbConfig.UserName,
		dbConfig.Password,
		dbConfig.Database,
		strconv.Itoa(dbConfig.Port),
	)

	gormConfig := &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true}
	if dbConfig.EnableLgLog {
		gormConfig = &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   getGormLogger(dbConfig, conf),
		}
	}

	if gormConfig.NamingStrategy == nil {
		gormConfig.NamingStrategy = schema.NamingStrategy{
			SingularTable: true,
		}
	}

	if db, err := gorm.Open(postgres.Open(dsn), gormConfig); err != nil {
		bootstrap.NewLogger().Logger.Error("postgres connect failed, err:", zap.Any("err", err))
		panic(err)
	} else {
		sqlDB, _ := db.DB()
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
		initTables(db)
		lgDB[dbConfig.DBName].DB = db
	}
}

func initMySqlGorm(dbConfig *plugins.Database, conf *config.Configuration) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		dbConfig.UserName,
		dbConfig.Password,
		dbConfig.Host,
		strconv.Itoa(dbConfig.Port),
		dbConfig.Database,
		dbConfig.Charset,
	)

	gormConfig := &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true}
	if dbConfig.EnableLgLog {
		gormConfig = &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   getGormLogger(dbConfig, conf),
		}
	}

	if gormConfig.NamingStrategy == nil {
		gormConfig.NamingStrategy = schema.NamingStrategy{
			SingularTable: true,
		}
	}

	if db, err := gorm.Open(mysql.Open(dsn), gormConfig); err != nil {
		bootstrap.NewLogger().Logger.Error("mysql connect failed, err:", zap.Any("err", err))
		panic(err)
	} else {
		sqlDB, _ := db.DB()
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
		initTables(db)
		lgDB[dbConfig.DBName].DB = db
	}
}

func getGormLogger(dbConfig *plugins.Database, conf *config.Configuration) logger.Interface {
	var logMode logger.LogLevel

	switch dbConfig.LogMode {
	case "silent":
		logMode = logger.Silent
	case "error":
		logMode = logger.Error
	case "warn":
		logMode = logger.Warn
	case "info":
		logMode = logger.Info
	default:
		logMode = logger.Info
	}

	return logger.New(getGormLogWriter(dbConfig, conf), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logMode,
		IgnoreRecordNotFoundError: false,
		Colorful:                  !dbConfig.EnableFileLogWriter,
	})
}

func getGormLogWriter(dbConfig *plugins.Database, conf *config.Configuration) logger.Writer {
	var writer io.Writer

	if dbConfig.EnableFileLogWriter {
		writer = &lumberjack.Logger{
			Filename:   conf.Log.RootDir + "/" + dbConfig.LogFilename,
			MaxSize:    conf.Log.MaxSize,
			MaxBackups: conf.Log.MaxBackups,
			MaxAge:     conf.Log.MaxAge,
			Compress:   conf.Log.Compress,
		}
	} else {
		writer = os.Stdout
	}
	return log.New(writer, "\r\n", log.LstdFlags)
}

func initTables(db *gorm.DB) {
	err := db.AutoMigrate(
		models.UploadSession{},
		models.ChunkRecord{},
		models.Artifact{},
		models.ProcessingJob{},
		models.JobLog{},
		models.TrackMeta{},
	)
	if err != nil {
		bootstrap.NewLogger().Logger.Error("migrate table failed", zap.Any("err", err))
		panic(err.Error())
	}
}
