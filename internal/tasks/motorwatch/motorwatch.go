// Package motorwatch — задача контроля движения моторов: детекция переходов
// движения, публикация позиций и закрытие switchoff-устройств при движении.
package motorwatch

import (
	"fmt"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/config"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/device"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/task"
)

// Task — задача контроля движения моторов.
//
// Карты устройств строятся один раз при инициализации из валидированного
// конфига и после старта не мутируют. Первые GraceCycles циклов после старта
// актуация switchoff подавляется: переходные readback при старте не считаются
// движением.
type Task struct {
	cfg        config.TaskConfig
	motors     map[string]device.Motor
	switches   map[string]device.Switch
	prevMoving map[string]bool
}

// New создаёт задачу по конфигу.
func New(cfg config.TaskConfig) *Task {
	return &Task{cfg: cfg}
}

// Name возвращает имя задачи.
func (t *Task) Name() string {
	return t.cfg.Name
}

// Initialize привязывает моторы и switchoff-устройства.
func (t *Task) Initialize(tc *task.Context) error {
	tc.Log.Info("инициализация задачи контроля моторов")
	t.motors = make(map[string]device.Motor)
	t.switches = make(map[string]device.Switch)
	t.prevMoving = make(map[string]bool)

	for _, b := range t.cfg.Motors {
		m, err := device.NewMotor(tc.Gateway, b)
		if err != nil {
			return fmt.Errorf("привязка мотора %s: %w", b.Name, err)
		}
		t.motors[b.Name] = m
		t.prevMoving[b.Name] = false
		tc.Log.Info("мотор найден: %s", b.Name)
	}
	for _, b := range t.cfg.Switchoff {
		s, err := device.NewSwitch(tc.Gateway, b)
		if err != nil {
			return fmt.Errorf("привязка switchoff %s: %w", b.Name, err)
		}
		t.switches[b.Name] = s
		tc.Log.Info("switchoff найден: %s", b.Name)
	}
	if len(t.motors) == 0 {
		tc.Log.Warn("моторы не заданы; задача ничего не контролирует")
	}
	tc.Log.Info("инициализировано моторов: %d", len(t.motors))
	return nil
}

// Cycle опрашивает каждый мотор и реагирует на переходы движения.
func (t *Task) Cycle(tc *task.Context) error {
	anyMoving := false
	for name, m := range t.motors {
		moving, err := m.Moving()
		if err != nil {
			tc.Log.Error("опрос %s: %v", name, err)
			continue
		}
		pos, posErr := m.Position()
		if posErr != nil {
			tc.Log.Debug("позиция %s недоступна: %v", name, posErr)
		}

		switch {
		case moving && !t.prevMoving[name]:
			tc.Log.Info("мотор %s начал движение, позиция %g", name, pos)
			t.onMovement(tc, name, pos)
		case !moving && t.prevMoving[name]:
			tc.Log.Info("мотор %s остановился, позиция %g", name, pos)
		case moving:
			tc.Log.Info("мотор %s движется, позиция %g", name, pos)
		}
		t.prevMoving[name] = moving

		if posErr == nil {
			tc.PVs.Set(name+"_POS", pos)
		}
		moveVal := 0.0
		if moving {
			moveVal = 1.0
			anyMoving = true
		}
		tc.PVs.Set(name+"_MOVING", moveVal)
	}
	if anyMoving {
		tc.PVs.Set("MOVING", 1)
	} else {
		tc.PVs.Set("MOVING", 0)
	}
	return nil
}

// onMovement закрывает switchoff-устройства при движении мотора.
// Период отсрочки после старта: первые GraceCycles циклов актуация подавлена.
func (t *Task) onMovement(tc *task.Context, motor string, pos float64) {
	if tc.PVs.Cycle() <= t.cfg.GraceCycles {
		tc.Log.Debug("движение %s в период отсрочки (цикл %d), актуация подавлена",
			motor, tc.PVs.Cycle())
		return
	}
	for name, sw := range t.switches {
		if err := sw.Set(false); err != nil {
			tc.Log.Error("закрытие switchoff %s: %v", name, err)
			continue
		}
		tc.Log.Info("switchoff %s закрыт из-за движения мотора %s (позиция %g)", name, motor, pos)
	}
}

// Cleanup закрывает привязанные устройства.
func (t *Task) Cleanup(tc *task.Context) {
	tc.Log.Info("остановка задачи контроля моторов")
	for _, m := range t.motors {
		_ = m.Close()
	}
	for _, s := range t.switches {
		_ = s.Close()
	}
	tc.PVs.SetStatus(signal.StatusEnd)
	tc.PVs.SetMessage("Stopped")
}
