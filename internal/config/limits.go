package config

import "time"

// WebSocket connection limits and constraints
const (
	// Connection limits
	MaxConnectionsPerRoom = 50
	MaxRoomsPerInstance   = 1000
	MaxTotalConnections   = 10000

	// Rate limiting
	MaxMessagesPerSecond = 20
	RateLimitWindow      = time.Second

	// Timeouts
	WriteTimeout = 10 * time.Second
	PingInterval = 30 * time.Second
	PongTimeout  = 90 * time.Second // 3x ping interval for network delay tolerance

	// Typing indicators
	TypingStopTimeout  = 1 * time.Second // inactivity before a typing entry expires
	TypingClearTimeout = 2 * time.Second // stop-typing to room-wide typing-timeout

	// History
	MaxChatHistory = 100 // messages kept per room, oldest evicted first

	// Channel buffers
	ClientSendBufferSize = 256
)
