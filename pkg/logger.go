package pkg

import (
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelDebug
)

// LogOptions is what the command line drivers expose to users.
type LogOptions struct {
	ShouldLog     bool
	ShowDebugLogs bool
}

func (o LogOptions) Level() LogLevel {
	if !o.ShouldLog {
		return LogLevelNone
	}
	if o.ShowDebugLogs {
		return LogLevelDebug
	}
	return LogLevelErrOnly
}

type leveled_logger struct {
	*log.Logger
	min_level LogLevel
	out       io.Writer
}

var (
	info_logger  = &leveled_logger{log.New(io.Discard, "INFO: ", log.Lshortfile|log.LstdFlags), LogLevelDebug, os.Stdout}
	warn_logger  = &leveled_logger{log.New(io.Discard, "WARN: ", log.Lshortfile|log.LstdFlags), LogLevelDebug, os.Stdout}
	debug_logger = &leveled_logger{log.New(io.Discard, "DEBUG: ", log.Lshortfile|log.LstdFlags), LogLevelDebug, os.Stdout}
	error_logger = &leveled_logger{log.New(os.Stderr, "ERROR: ", log.Lshortfile|log.LstdFlags), LogLevelErrOnly, os.Stderr}
	fatal_logger = &leveled_logger{log.New(os.Stderr, "FATAL: ", log.Lshortfile|log.LstdFlags), LogLevelErrOnly, os.Stderr}

	all_loggers = []*leveled_logger{info_logger, warn_logger, debug_logger, error_logger, fatal_logger}
)

var log_level = LogLevelErrOnly

func SetLogLevel(level LogLevel) {
	log_level = level
	for _, l := range all_loggers {
		if level >= l.min_level {
			l.SetOutput(l.out)
		} else {
			l.SetOutput(io.Discard)
		}
	}
	debug_logger.Println("log level set to", level)
}

func GetLogLevel() LogLevel { return log_level }

var (
	InfoLog  = info_logger.Println
	ErrorLog = error_logger.Println
	FatalLog = fatal_logger.Fatalln
	WarnLog  = warn_logger.Println
	DebugLog = debug_logger.Println
)
