package config

import "kbpkit/internal/kbp"

const (
	defaultStateDir     = "~/.local/share/kbpkit"
	defaultLogFormat    = "console"
	defaultLogLevel     = "warn"
	defaultHistoryLimit = 20
	historyFileName     = "history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Parse: Parse{
			Encoding: kbp.EncodingUTF8,
		},
		Write: Write{
			Backup: true,
		},
		History: History{
			Enabled: true,
			Limit:   defaultHistoryLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
