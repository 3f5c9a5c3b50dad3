package bootstrap

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trackvault/trackvault/config"
	"go.uber.org/zap"
)

var (
	configPath   string
	rootPath     = ""
	lgConfig     = new(LangGoConfig)
	confFilePath = "conf/config.yaml"
)

// LangGoConfig wraps the parsed configuration behind a once-guarded singleton.
type LangGoConfig struct {
	Conf *config.Configuration
	Once *sync.Once
}

func newLangGoConfig() *LangGoConfig {
	return &LangGoConfig{
		Conf: &config.Configuration{},
		Once: &sync.Once{},
	}
}

// NewConfig loads the configuration once and returns the shared instance.
// Pass an empty string to reuse whatever was loaded first.
func NewConfig(confFile string) *config.Configuration {
	if lgConfig.Conf != nil {
		return lgConfig.Conf
	}
	lgConfig = newLangGoConfig()
	if confFile == "" {
		lgConfig.initLangGoConfig(confFilePath)
	} else {
		lgConfig.initLangGoConfig(confFile)
	}
	return lgConfig.Conf
}

func (lg *LangGoConfig) initLangGoConfig(confFile string) {
	lg.Once.Do(
		func() {
			initConfig(lg.Conf, confFile)
		},
	)
}

func initConfig(conf *config.Configuration, confFile string) {
	pflag.StringVarP(&configPath, "conf", "", filepath.Join(rootPath, confFile),
		"config path, eg: --conf config.yaml")
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(rootPath, configPath)
	}

	fmt.Println("load config:" + configPath)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		fmt.Println("read config failed: ", zap.String("err", err.Error()))
		panic(err)
	}

	if err := v.Unmarshal(&conf); err != nil {
		fmt.Println("config parse failed: ", zap.String("err", err.Error()))
	}
	conf.Upload.Normalize()

	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		fmt.Println("", zap.String("config file changed:", in.Name))
		defer func() {
			if err := recover(); err != nil {
				fmt.Println("config file changed err:", zap.Any("err", err))
			}
		}()
		if err := v.Unmarshal(&conf); err != nil {
			fmt.Println("config parse failed: ", zap.String("err", err.Error()))
		}
		conf.Upload.Normalize()
	})
	lgConfig.Conf = conf
}
