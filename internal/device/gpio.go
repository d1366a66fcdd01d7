package device

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// GPIOSwitch — выключатель на цифровом пине (класс устройств DIGITAL_Px
// на RedPitaya и подобных платах).
type GPIOSwitch struct {
	name string
	pin  gpio.PinIO
}

// NewGPIOSwitch создаёт выключатель на пине pin.
func NewGPIOSwitch(name string, pin gpio.PinIO) *GPIOSwitch {
	return &GPIOSwitch{name: name, pin: pin}
}

// Name возвращает имя устройства.
func (s *GPIOSwitch) Name() string {
	return s.name
}

// Set выставляет уровень пина: true = High, false = Low.
func (s *GPIOSwitch) Set(on bool) error {
	if err := s.pin.Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("switch %s: %w", s.name, err)
	}
	return nil
}

// Close не требует освобождения ресурсов (пином владеет host-реестр).
func (s *GPIOSwitch) Close() error {
	return nil
}
