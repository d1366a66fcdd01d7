// Package tasks — фабрика задач контроллера по типу из конфига.
package tasks

import (
	"fmt"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/config"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/task"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/tasks/datalog"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/tasks/lasersynch"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/tasks/monitor"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/tasks/motorwatch"
)

// New создаёт задачу по типу из конфига (аналог выбора по protocol).
func New(cfg config.TaskConfig) (task.Task, error) {
	switch cfg.Type {
	case config.TypeLaserSynch:
		return lasersynch.New(cfg), nil
	case config.TypeMotorWatch:
		return motorwatch.New(cfg), nil
	case config.TypeMonitoring:
		return monitor.New(cfg), nil
	case config.TypeDataLogging:
		return datalog.New(cfg), nil
	default:
		return nil, fmt.Errorf("неизвестный тип задачи: %s", cfg.Type)
	}
}
