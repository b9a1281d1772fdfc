package client

import "fmt"

// Verbose enables the client's own log lines.
var Verbose = false

func Log(level LogLevel, msg string) {
	if !Verbose && level != LogLevelError {
		return
	}
	fmt.Printf("[PCD:%s] %s\n", level, msg)
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelError LogLevel = "ERROR"
)
