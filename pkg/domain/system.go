package domain

import "fmt"

// Logger ロガー
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Red 赤色文字列を生成
func Red(format string, a ...interface{}) string {
	return fmt.Sprintf("\x1b[31m"+format+"\x1b[0m", a...)
}
