package config

import "path/filepath"

// DefaultCaseGlobs are the patterns searched for case files when the
// validate command is run without arguments.
var DefaultCaseGlobs = []string{
	"cases/**/*.yml",
	"cases/**/*.yaml",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:                  8080,
		DataDir:               ".noticecheck",
		AllowAllOrigins:       false,
		DefaultJurisdiction:   "england",
		NegativeBalancePolicy: "offset",
		Cases:                 DefaultCaseGlobs,
		CI: CIConfig{
			FailOnWarning: false,
		},
	}
}

// DatabasePath returns the location of the SQLite database inside the
// configured data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "noticecheck.db")
}
