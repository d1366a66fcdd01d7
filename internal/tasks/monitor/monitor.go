// Package monitor — задача мониторинга: агрегат трёх входных PV по конфигу
// (average, sum, max, min) с публикацией результата и счётчика выборок.
package monitor

import (
	"fmt"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/config"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/task"
)

const (
	pvInput1      = "INPUT1"
	pvInput2      = "INPUT2"
	pvInput3      = "INPUT3"
	pvResult      = "OUTPUT_RESULT"
	pvSampleCount = "SAMPLE_COUNT"
	pvReset       = "RESET"
)

// Task — задача мониторинга входных PV.
type Task struct {
	cfg     config.TaskConfig
	samples int64
}

// New создаёт задачу по конфигу.
func New(cfg config.TaskConfig) *Task {
	return &Task{cfg: cfg}
}

// Name возвращает имя задачи.
func (t *Task) Name() string {
	return t.cfg.Name
}

// Initialize подписывает сброс счётчика выборок.
func (t *Task) Initialize(tc *task.Context) error {
	tc.Log.Info("инициализация задачи мониторинга, расчёт: %s", t.cfg.CalculationType)
	tc.PVs.Watch(pvReset, func(_ string, v float64) {
		if v != 0 {
			tc.Log.Info("сброс счётчика выборок")
		}
	})
	return nil
}

// Cycle читает входы, публикует агрегат и инкрементирует счётчик выборок.
func (t *Task) Cycle(tc *task.Context) error {
	// Самоочищающаяся кнопка сброса.
	if tc.PVs.Get(pvReset) != 0 {
		t.samples = 0
		tc.PVs.Set(pvSampleCount, 0)
		tc.PVs.Set(pvReset, 0)
	}

	in1 := tc.PVs.Get(pvInput1)
	in2 := tc.PVs.Get(pvInput2)
	in3 := tc.PVs.Get(pvInput3)

	var result float64
	switch t.cfg.CalculationType {
	case "average":
		result = (in1 + in2 + in3) / 3.0
	case "sum":
		result = in1 + in2 + in3
	case "max":
		result = max3(in1, in2, in3)
	case "min":
		result = -max3(-in1, -in2, -in3)
	}

	tc.PVs.Set(pvResult, result)
	t.samples++
	tc.PVs.Set(pvSampleCount, float64(t.samples))
	tc.PVs.SetMessage(fmt.Sprintf("Processed %d samples", t.samples))
	tc.Log.Debug("цикл %d: result=%.3f", t.samples, result)
	return nil
}

// Cleanup публикует конечный статус.
func (t *Task) Cleanup(tc *task.Context) {
	tc.Log.Info("остановка задачи мониторинга")
	tc.PVs.SetStatus(signal.StatusEnd)
	tc.PVs.SetMessage("Stopped")
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
