package config

import "time"

// Application constants
const (
	AppName    = "PopDash"
	AppVersion = "1.0.0"

	// File paths (relative to the base directory)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"

	// WebSocket settings
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketWriteWait       = 10 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketMaxMessageSize  = 512

	// PNG export bounds
	MinImageSize = 200
	MaxImageSize = 4000

	// Error messages
	ErrMsgSourceNotFound = "source file not found"
	ErrMsgChartNotFound  = "chart not found"
)
