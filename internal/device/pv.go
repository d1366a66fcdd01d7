package device

import (
	"fmt"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
)

// Поля записи мотора (motor record).
const (
	fieldReadback  = ".RBV"  // позиция (readback)
	fieldValue     = ".VAL"  // уставка; резерв, если readback недоступен
	fieldMoving    = ".MOVN" // признак движения
	fieldMoveRel   = ".RLV"  // относительное перемещение
	fieldHighLimit = ".HLM"  // верхний программный предел
)

// PVMotor — мотор, управляемый через внешние PV (record prefix + поле).
type PVMotor struct {
	gw     signal.Gateway
	name   string
	prefix string
}

// NewPVMotor создаёт мотор с префиксом записи prefix (например "SPARC:MOT:m0").
func NewPVMotor(gw signal.Gateway, name, prefix string) *PVMotor {
	return &PVMotor{gw: gw, name: name, prefix: prefix}
}

// Name возвращает имя устройства.
func (m *PVMotor) Name() string {
	return m.name
}

// Position возвращает позицию по readback; при его отсутствии — по уставке
// (резервный путь, как fallback на user_readback у исходного контроллера).
func (m *PVMotor) Position() (float64, error) {
	if v, ok := m.gw.Read(m.prefix + fieldReadback); ok {
		return v, nil
	}
	if v, ok := m.gw.Read(m.prefix + fieldValue); ok {
		return v, nil
	}
	return 0, fmt.Errorf("motor %s: позиция недоступна", m.name)
}

// Moving возвращает признак движения.
func (m *PVMotor) Moving() (bool, error) {
	v, ok := m.gw.Read(m.prefix + fieldMoving)
	if !ok {
		return false, fmt.Errorf("motor %s: признак движения недоступен", m.name)
	}
	return v != 0, nil
}

// Move выполняет относительное перемещение на delta.
func (m *PVMotor) Move(delta float64) error {
	return m.gw.Write(m.prefix+fieldMoveRel, delta)
}

// SetHighLimit устанавливает верхний программный предел.
func (m *PVMotor) SetHighLimit(limit float64) error {
	return m.gw.Write(m.prefix+fieldHighLimit, limit)
}

// Close не требует освобождения ресурсов.
func (m *PVMotor) Close() error {
	return nil
}

// PVSwitch — выключатель, управляемый записью одного внешнего PV.
type PVSwitch struct {
	gw   signal.Gateway
	name string
	pv   string
}

// NewPVSwitch создаёт выключатель с командным PV pv.
func NewPVSwitch(gw signal.Gateway, name, pv string) *PVSwitch {
	return &PVSwitch{gw: gw, name: name, pv: pv}
}

// Name возвращает имя устройства.
func (s *PVSwitch) Name() string {
	return s.name
}

// Set переводит выключатель: true = 1, false = 0.
func (s *PVSwitch) Set(on bool) error {
	v := 0.0
	if on {
		v = 1.0
	}
	return s.gw.Write(s.pv, v)
}

// Close не требует освобождения ресурсов.
func (s *PVSwitch) Close() error {
	return nil
}
