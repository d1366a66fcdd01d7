package task

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
)

// State — состояние планировщика задачи.
type State int32

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Scheduler ведёт цикл одной задачи с фиксированным номинальным периодом.
//
// Дрейф не компенсируется: если работа цикла превысила период, следующий тик
// начинается сразу после завершения работы, а не пропускается. При выключенной
// задаче (PV ENABLE == 0) планировщик спит полный период без работы.
type Scheduler struct {
	task   Task
	tc     *Context
	period time.Duration
	state  atomic.Int32
}

// NewScheduler создаёт планировщик задачи с периодом period.
func NewScheduler(t Task, tc *Context, period time.Duration) *Scheduler {
	if period <= 0 {
		period = time.Second
	}
	s := &Scheduler{task: t, tc: tc, period: period}
	s.state.Store(int32(StateStopped))
	return s
}

// State возвращает текущее состояние планировщика.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Context возвращает контекст задачи (для HTTP API статуса).
func (s *Scheduler) Context() *Context {
	return s.tc
}

// TaskName возвращает имя задачи.
func (s *Scheduler) TaskName() string {
	return s.task.Name()
}

// Run выполняет Initialize и ведёт цикл задачи до отмены ctx.
//
// Ошибка цикла ловится на границе цикла: статус ERROR, диагностическое
// сообщение, счётчик циклов не инкрементируется, работа продолжается со
// следующего тика. Запрос остановки наблюдается на границе цикла; Cleanup
// выполняется на каждом пути выхода до перехода в Stopped.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.task.Initialize(s.tc); err != nil {
		return fmt.Errorf("%s: initialize: %w", s.task.Name(), err)
	}
	s.state.Store(int32(StateRunning))
	s.tc.PVs.SetStatus(signal.StatusRunning)

	defer func() {
		s.state.Store(int32(StateStopping))
		s.task.Cleanup(s.tc)
		s.state.Store(int32(StateStopped))
	}()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if !s.tc.PVs.Enabled() {
			// Выключенная задача: полный период простоя, состояние не мутирует.
			s.tc.Log.Debug("задача выключена, цикл пропущен")
			continue
		}
		if err := s.task.Cycle(s.tc); err != nil {
			s.tc.Log.Error("ошибка цикла: %v", err)
			s.tc.PVs.SetStatus(signal.StatusError)
			s.tc.PVs.SetMessage(fmt.Sprintf("Error: %v", err))
			continue
		}
		s.tc.PVs.SetStatus(signal.StatusRunning)
		s.tc.PVs.StepCycle()
	}
}
