package config

import "github.com/trackvault/trackvault/config/plugins"

// Configuration maps every section of conf/config.yaml.
type Configuration struct {
	App      App                 `mapstructure:"app" json:"app" yaml:"app"`
	Log      Log                 `mapstructure:"log" json:"log" yaml:"log"`
	Upload   Upload              `mapstructure:"upload" json:"upload" yaml:"upload"`
	Database []*plugins.Database `mapstructure:"database" json:"database" yaml:"database"`
	Redis    *plugins.Redis      `mapstructure:"redis" json:"redis" yaml:"redis"`
	Minio    *plugins.Minio      `mapstructure:"minio" json:"minio" yaml:"minio"`
	Cos      *plugins.Cos        `mapstructure:"cos" json:"cos" yaml:"cos"`
	Oss      *plugins.Oss        `mapstructure:"oss" json:"oss" yaml:"oss"`
	Local    *plugins.Local      `mapstructure:"local" json:"local" yaml:"local"`
}

// App server identity and listen address.
type App struct {
	Env  string `mapstructure:"env" json:"env" yaml:"env"`
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	Port string `mapstructure:"port" json:"port" yaml:"port"`
}

// Log zap + lumberjack settings.
type Log struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level"`
	RootDir    string `mapstructure:"root_dir" json:"root_dir" yaml:"root_dir"`
	Filename   string `mapstructure:"filename" json:"filename" yaml:"filename"`
	Format     string `mapstructure:"format" json:"format" yaml:"format"`
	ShowLine   bool   `mapstructure:"show_line" json:"show_line" yaml:"show_line"`
	EnableFile bool   `mapstructure:"enable_file" json:"enable_file" yaml:"enable_file"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" json:"compress" yaml:"compress"`
}

// Upload policy knobs for the upload pipeline. These are policy, not
// structure: changing them must never change correctness.
type Upload struct {
	ChunkSize       int64 `mapstructure:"chunk_size" json:"chunk_size" yaml:"chunk_size"`                      // advertised chunk size, bytes
	MaxFileSize     int64 `mapstructure:"max_file_size" json:"max_file_size" yaml:"max_file_size"`             // cap on declared size, bytes
	IdleTimeoutMin  int   `mapstructure:"idle_timeout_min" json:"idle_timeout_min" yaml:"idle_timeout_min"`    // session idle expiry, minutes
	JobAttempts     int   `mapstructure:"job_attempts" json:"job_attempts" yaml:"job_attempts"`                // processing job attempt bound
	JobTimeoutSec   int   `mapstructure:"job_timeout_sec" json:"job_timeout_sec" yaml:"job_timeout_sec"`       // per-attempt timeout, seconds
	WorkerNum       int   `mapstructure:"worker_num" json:"worker_num" yaml:"worker_num"`                      // dispatch worker pool size
	WaveformPoints  int   `mapstructure:"waveform_points" json:"waveform_points" yaml:"waveform_points"`       // amplitude samples per track
	PreviewSeconds  int   `mapstructure:"preview_seconds" json:"preview_seconds" yaml:"preview_seconds"`       // preview clip length
	PreviewFadeMsec int   `mapstructure:"preview_fade_msec" json:"preview_fade_msec" yaml:"preview_fade_msec"` // fade in/out length
}

const (
	DefaultChunkSize      = 1 << 20   // 1 MiB
	DefaultMaxFileSize    = 500 << 20 // 500 MiB
	DefaultIdleTimeoutMin = 30
	DefaultJobAttempts    = 3
	DefaultJobTimeoutSec  = 120
	DefaultWorkerNum      = 8
	DefaultWaveformPoints = 1000
	DefaultPreviewSec     = 30
	DefaultPreviewFadeMs  = 500
)

// Normalize fills zero values with the documented defaults so a sparse
// config file still yields a working pipeline.
func (u *Upload) Normalize() {
	if u.ChunkSize <= 0 {
		u.ChunkSize = DefaultChunkSize
	}
	if u.MaxFileSize <= 0 {
		u.MaxFileSize = DefaultMaxFileSize
	}
	if u.IdleTimeoutMin <= 0 {
		u.IdleTimeoutMin = DefaultIdleTimeoutMin
	}
	if u.JobAttempts <= 0 {
		u.JobAttempts = DefaultJobAttempts
	}
	if u.JobTimeoutSec <= 0 {
		u.JobTimeoutSec = DefaultJobTimeoutSec
	}
	if u.WorkerNum <= 0 {
		u.WorkerNum = DefaultWorkerNum
	}
	if u.WaveformPoints <= 0 {
		u.WaveformPoints = DefaultWaveformPoints
	}
	if u.PreviewSeconds <= 0 {
		u.PreviewSeconds = DefaultPreviewSec
	}
	if u.PreviewFadeMsec <= 0 {
		u.PreviewFadeMsec = DefaultPreviewFadeMs
	}
}
