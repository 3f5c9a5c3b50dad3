package plugins

// Local filesystem storage config, used for single-node deployments and tests.
type Local struct {
	RootPath string `mapstructure:"root_path" json:"root_path" yaml:"root_path"`
	Enabled  bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
}
