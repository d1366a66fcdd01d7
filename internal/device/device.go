// Package device — абстракция адресуемого оборудования линии пучка.
//
// Возможности устройства (position/moving/set) разрешаются один раз при
// привязке по конфигу, а не повторной проверкой на каждом цикле: задача
// работает только через интерфейсы Motor и Switch.
package device

import (
	"fmt"

	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/config"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
)

// Motor — двигатель: позиция, признак движения, относительное перемещение.
type Motor interface {
	Name() string
	Position() (float64, error)
	Moving() (bool, error)
	Move(delta float64) error
	Close() error
}

// Switch — двухпозиционный выключатель (например, switchoff-устройство).
type Switch interface {
	Name() string
	Set(on bool) error
	Close() error
}

// NewMotor создаёт мотор по привязке из конфига (аналог выбора протокола
// источника по конфигу).
func NewMotor(gw signal.Gateway, c config.DeviceBinding) (Motor, error) {
	switch c.Type {
	case "pv":
		return NewPVMotor(gw, c.Name, c.Prefix), nil
	case "tml":
		baud := c.Baud
		if baud == 0 {
			baud = 115200
		}
		return OpenTMLMotor(c.Name, c.Port, baud)
	default:
		return nil, fmt.Errorf("device %s: неизвестный тип мотора %q", c.Name, c.Type)
	}
}

// NewSwitch создаёт выключатель по привязке из конфига.
func NewSwitch(gw signal.Gateway, c config.DeviceBinding) (Switch, error) {
	switch c.Type {
	case "pv":
		return NewPVSwitch(gw, c.Name, c.Prefix), nil
	case "gpio":
		pin := gpioreg.ByName(c.Pin)
		if pin == nil {
			return nil, fmt.Errorf("device %s: gpio пин %q не найден", c.Name, c.Pin)
		}
		return NewGPIOSwitch(c.Name, pin), nil
	default:
		return nil, fmt.Errorf("device %s: неизвестный тип выключателя %q", c.Name, c.Type)
	}
}
