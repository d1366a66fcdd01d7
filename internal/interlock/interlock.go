// Package interlock — защёлкивающийся interlock по скользящим окнам сэмплов.
//
// Две независимые накапливающиеся причины: ошибка PLL выше порога и амплитуда
// лазера ниже порога. Срабатывание — только когда окно заполнено и каждый его
// сэмпл нарушает порог: одиночный выброс защиту не снимает, а устойчивый сбой
// гарантированно срабатывает не позже чем за длину окна циклов.
package interlock

import (
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/buffer"
)

// Reason — причина срабатывания interlock.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonErrorThreshold
	ReasonAmplitudeThreshold
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonErrorThreshold:
		return "error_threshold"
	case ReasonAmplitudeThreshold:
		return "amplitude_threshold"
	default:
		return "unknown"
	}
}

// Decision — результат оценки одного цикла.
type Decision struct {
	Engaged  bool
	Reason   Reason
	ForceOff bool // true, когда защищаемую подсистему нужно принудительно выключить в этом цикле
}

// Engine — interlock с защёлкой. Защёлка снимается только явным Reset
// (внешняя команда оператора), не содержимым буферов.
type Engine struct {
	length  int
	errBuf  *buffer.SampleBuffer
	ampBuf  *buffer.SampleBuffer
	engaged bool
	reason  Reason
}

// New создаёт interlock с окнами длины length; при length <= 0 используется 1.
func New(length int) *Engine {
	if length <= 0 {
		length = 1
	}
	return &Engine{
		length: length,
		errBuf: buffer.New(length),
		ampBuf: buffer.New(length),
	}
}

// Evaluate выполняет оценку одного цикла.
//
// errSample и ampSample — сэмплы этого цикла; nil означает "сигнал недоступен",
// и буфер в этом цикле не растёт (подстановка нуля исказила бы счёт нарушений).
// active — текущее состояние защищаемой подсистемы: по неактивной подсистеме
// interlock не оценивается (защищать нечего), и решение сообщает engaged=false,
// но внутренняя защёлка при этом сохраняется до Reset.
func (e *Engine) Evaluate(active bool, errSample, ampSample *float64, errThreshold, ampThreshold float64) Decision {
	if errSample != nil {
		e.errBuf.Push(*errSample)
	}
	if ampSample != nil {
		e.ampBuf.Push(*ampSample)
	}
	if !active {
		return Decision{Engaged: false, Reason: ReasonNone}
	}
	if e.errBuf.IsFull() && e.errBuf.CountOver(errThreshold) == e.length {
		e.engaged = true
		e.reason = ReasonErrorThreshold
		return Decision{Engaged: true, Reason: e.reason, ForceOff: true}
	}
	if e.ampBuf.IsFull() && e.ampBuf.CountUnder(ampThreshold) == e.length {
		e.engaged = true
		e.reason = ReasonAmplitudeThreshold
		return Decision{Engaged: true, Reason: e.reason, ForceOff: true}
	}
	// Защёлка: без явного Reset соответствующие циклы не снимают engaged.
	return Decision{Engaged: e.engaged, Reason: e.reason, ForceOff: e.engaged}
}

// Engaged возвращает состояние защёлки.
func (e *Engine) Engaged() bool {
	return e.engaged
}

// Reason возвращает причину последнего срабатывания (ReasonNone, если защёлка снята).
func (e *Engine) LastReason() Reason {
	return e.reason
}

// Reset снимает защёлку и очищает оба окна (внешняя команда переарма).
func (e *Engine) Reset() {
	e.engaged = false
	e.reason = ReasonNone
	e.errBuf.Reset()
	e.ampBuf.Reset()
}
