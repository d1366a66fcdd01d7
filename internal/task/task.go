// Package task — рантайм задач контроллера: контекст, цикл и планировщик.
package task

import (
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/logger"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
)

// Task — одна задача контроллера: init → циклы → cleanup.
//
// Initialize вызывается один раз перед стартом цикла; ошибка фатальна для
// задачи (задача не стартует). Cycle выполняет ровно одну итерацию; ошибка
// не фатальна — планировщик публикует ERROR и продолжает со следующего тика.
// Cleanup выполняется на любом пути завершения, включая завершение после
// ошибочного цикла, и обязан приводить выходы в безопасное состояние.
type Task interface {
	Name() string
	Initialize(tc *Context) error
	Cycle(tc *Context) error
	Cleanup(tc *Context)
}

// Context — окружение задачи, передаваемое каждому компоненту явно:
// логгер, таблица PV задачи и шлюз внешних сигналов.
type Context struct {
	Log     *logger.Logger
	PVs     *signal.Registry
	Gateway signal.Gateway
}

// NewContext создаёт контекст задачи name.
func NewContext(name string, gw signal.Gateway) *Context {
	if gw == nil {
		gw = signal.Null{}
	}
	return &Context{
		Log:     logger.NewLogger(name),
		PVs:     signal.NewRegistry(),
		Gateway: gw,
	}
}
