// Package logger — единый вывод логов задач контроллера с префиксом и учётом quiet.
package logger

import (
	"fmt"
	"log"
)

// Quiet при true отключает информационные сообщения (Info, Debug); Warn и Error выводятся всегда.
var Quiet bool

// Debug при true включает отладочные сообщения (Logger.Debug); игнорируется при Quiet.
var Debug bool

// Info выводит сообщение с префиксом "beamline-tasks: ", если Quiet == false.
func Info(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Printf("beamline-tasks: "+format, args...)
}

// Error выводит сообщение об ошибке с префиксом "beamline-tasks: " всегда.
func Error(format string, args ...interface{}) {
	log.Printf("beamline-tasks: "+format, args...)
}

// Logger — именованный логгер одной задачи (префикс [имя] и уровень в каждой строке).
type Logger struct {
	name string
}

// NewLogger создаёт логгер с именем задачи.
func NewLogger(name string) *Logger {
	return &Logger{name: name}
}

// Name возвращает имя логгера.
func (l *Logger) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Info выводит информационное сообщение задачи (подавляется при Quiet).
func (l *Logger) Info(format string, args ...interface{}) {
	if l == nil || Quiet {
		return
	}
	log.Printf("[%s] INFO: %s", l.name, fmt.Sprintf(format, args...))
}

// Warn выводит предупреждение задачи (выводится всегда).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l == nil {
		return
	}
	log.Printf("[%s] WARN: %s", l.name, fmt.Sprintf(format, args...))
}

// Error выводит сообщение об ошибке задачи (выводится всегда).
func (l *Logger) Error(format string, args ...interface{}) {
	if l == nil {
		return
	}
	log.Printf("[%s] ERROR: %s", l.name, fmt.Sprintf(format, args...))
}

// Debug выводит отладочное сообщение задачи, если включён пакетный флаг Debug.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l == nil || Quiet || !Debug {
		return
	}
	log.Printf("[%s] DEBUG: %s", l.name, fmt.Sprintf(format, args...))
}
