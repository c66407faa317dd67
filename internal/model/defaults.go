package model

import "time"

// Shared defaults used by both the client and the mock backend.
const (
	DefaultBackendURL     = "http://127.0.0.1:5000"
	DefaultAlertsInterval = 5 * time.Second
	DefaultStatsInterval  = 5 * time.Second
	DefaultFetchTimeout   = 4 * time.Second
	DefaultSampleInterval = 2 * time.Second
	DefaultWindowSize     = 10
	DefaultAlertLimit     = 8
)
