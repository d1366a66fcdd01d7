package buffer

// EMA — экспоненциальное скользящее среднее с прогревом по окну:
// пока набрано меньше window сэмплов, Add возвращает простое среднее
// накопленного; после прогрева — new = old + alpha*(value - old).
type EMA struct {
	alpha float64
	buf   *SampleBuffer
	value float64
	warm  bool
}

// NewEMA создаёт EMA с окном прогрева window и коэффициентом alpha.
// При alpha вне (0, 1] используется 0.1.
func NewEMA(window int, alpha float64) *EMA {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.1
	}
	return &EMA{alpha: alpha, buf: New(window)}
}

// Add добавляет сэмпл и возвращает текущее сглаженное значение.
func (e *EMA) Add(v float64) float64 {
	if !e.warm {
		e.buf.Push(v)
		m, _ := e.buf.Mean()
		e.value = m
		if e.buf.IsFull() {
			e.warm = true
		}
		return e.value
	}
	e.value += e.alpha * (v - e.value)
	return e.value
}

// Value возвращает последнее сглаженное значение и true, если был хотя бы один сэмпл.
func (e *EMA) Value() (float64, bool) {
	return e.value, e.warm || e.buf.Len() > 0
}

// Reset сбрасывает прогрев и накопленное значение.
func (e *EMA) Reset() {
	e.buf.Reset()
	e.value = 0
	e.warm = false
}
