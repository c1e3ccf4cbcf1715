package memory

import (
	"log"
	"strings"

	"github.com/einsteinx2/balance-open/pkg/domain"
)

const (
	Debug = iota
	Info
	Error
)

type Logger struct {
	Level int
}

// NewLogger ログレベル名からロガー生成
func NewLogger(level string) *Logger {
	switch strings.ToLower(level) {
	case "debug":
		return &Logger{Level: Debug}
	case "error":
		return &Logger{Level: Error}
	default:
		return &Logger{Level: Info}
	}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	if l.Level > Debug {
		return
	}
	log.Printf("[DEBUG] "+format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	if l.Level > Info {
		return
	}
	log.Printf("[INFO] "+format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	if l.Level > Error {
		return
	}
	level := domain.Red("[ERROR]")

	log.Printf(level+format, v...)
}
