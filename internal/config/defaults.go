package config

const (
	defaultDataDir              = "~/.local/share/debtwatch"
	defaultLogDir               = "~/.local/share/debtwatch/logs"
	defaultAPIBaseURL           = "http://localhost:3001/api"
	defaultAPIRequestTimeout    = 60
	defaultConflictPolicy       = ConflictPolicyAdvisory
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		API: API{
			BaseURL:        defaultAPIBaseURL,
			RequestTimeout: defaultAPIRequestTimeout,
		},
		Upload: Upload{
			ConflictPolicy: defaultConflictPolicy,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Uploads:        true,
			Workflow:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
