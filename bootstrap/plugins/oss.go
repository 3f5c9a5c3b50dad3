package plugins

import (
	"sync"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/trackvault/trackvault/bootstrap"
	"github.com/trackvault/trackvault/config"
	"go.uber.org/zap"
)

var lgOss = new(LangGoOss)

type LangGoOss struct {
	Once      *sync.Once
	OssClient *oss.Client
}

func (lg *LangGoOss) NewOss() *oss.Client {
	if lgOss.OssClient != nil {
		return lgOss.OssClient
	}
	return lg.New().(*oss.Client)
}

func newLangGoOss() *LangGoOss {
	return &LangGoOss{
		OssClient: &oss.Client{},
		Once:      &sync.Once{},
	}
}

// Name .
func (lg *LangGoOss) Name() string {
	return "Oss"
}

// New .
func (lg *LangGoOss) New() interface{} {
	lgOss = newLangGoOss()
	lgOss.initOss(bootstrap.NewConfig(""))
	return lg.OssClient
}

// Health .
func (lg *LangGoOss) Health() {
	if _, err := lgOss.OssClient.ListBuckets(); err != nil {
		bootstrap.NewLogger().Logger.Error("oss connect failed, err:", zap.Any("err", err))
		panic(err)
	}
}

// Close .
func (lg *LangGoOss) Close() {}

// Flag .
func (lg *LangGoOss) Flag() bool {
	return bootstrap.NewConfig("").Oss.Enabled
}

func init() {
	p := &LangGoOss{}
	RegisteredPlugin(p)
}

func (lg *LangGoOss) initOss(conf *config.Configuration) {
	lg.Once.Do(func() {
		client, err := oss.New(conf.Oss.EndPoint, conf.Oss.AccessKeyId, conf.Oss.AccessKeySecret)
		if err != nil {
			bootstrap.NewLogger().Logger.Error("oss connect failed: ", zap.Any("err", err))
			panic(err)
		}
		lgOss.OssClient = client
	})
}
