package storage

import (
	"io"
	"sync"

	"github.com/trackvault/trackvault/app/pkg/utils"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/config"
)

// CustomStorage is the narrow blob contract the upload pipeline depends on.
// Readers returned by GetObject must be closed by the caller.
type CustomStorage interface {
	// MakeBucket creates the bucket if it does not exist
	MakeBucket(bucket string) error

	// GetObject streams an object body
	GetObject(bucket, object string) (io.ReadCloser, error)

	// PutObject streams reader into the object and returns its address.
	// size may be -1 when unknown.
	PutObject(bucket, object string, reader io.Reader, size int64, contentType string) (string, error)

	// StatObject returns the stored size
	StatObject(bucket, object string) (int64, error)

	// DeleteObject removes the object
	DeleteObject(bucket, object string) error
}

type LangGoStorage struct {
	Mux     *sync.RWMutex
	Storage CustomStorage
}

var (
	lgStorage *LangGoStorage
)

func InitStorage(conf *config.Configuration) {
	var storageHandler CustomStorage
	if conf.Local != nil && conf.Local.Enabled {
		storageHandler = NewLocalStorage()
		bootstrap.NewLogger().Logger.Info("object storage backend: Local")
	} else if conf.Minio != nil && conf.Minio.Enabled {
		storageHandler = NewMinIOStorage()
		bootstrap.NewLogger().Logger.Info("object storage backend: Minio")
	} else if conf.Cos != nil && conf.Cos.Enabled {
		storageHandler = NewCosStorage()
		bootstrap.NewLogger().Logger.Info("object storage backend: COS")
	} else if conf.Oss != nil && conf.Oss.Enabled {
		storageHandler = NewOssStorage()
		bootstrap.NewLogger().Logger.Info("object storage backend: OSS")
	} else {
		panic("no object storage backend enabled")
	}

	lgStorage = &LangGoStorage{
		Mux:     &sync.RWMutex{},
		Storage: storageHandler,
	}
	for _, bucket := range []string{utils.BucketTracks, utils.BucketParts, utils.BucketPreviews} {
		if err := storageHandler.MakeBucket(bucket); err != nil {
			panic(err)
		}
	}
}

func NewStorage() *LangGoStorage {
	return lgStorage
}
