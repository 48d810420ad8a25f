package config

// Config is the top-level noticecheck configuration, corresponding to
// .noticecheck.yml.
type Config struct {
	Port                  int      `yaml:"port" koanf:"port"`
	DataDir               string   `yaml:"data_dir" koanf:"data_dir"`
	AllowAllOrigins       bool     `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	DefaultJurisdiction   string   `yaml:"default_jurisdiction" koanf:"default_jurisdiction"`
	NegativeBalancePolicy string   `yaml:"negative_balance_policy" koanf:"negative_balance_policy"`
	Cases                 []string `yaml:"cases" koanf:"cases"`
	CI                    CIConfig `yaml:"ci" koanf:"ci"`
}

// CIConfig holds CI-specific settings.
type CIConfig struct {
	FailOnWarning bool `yaml:"fail_on_warning" koanf:"fail_on_warning"`
}
