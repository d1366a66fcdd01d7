// Package tracking — коррекция слежения: мёртвая зона и фиксированный шаг.
package tracking

import "math"

// Config — параметры коррекции. InvertSign — калибровочная константа
// развёртывания: соответствие знака ошибки направлению актуатора.
type Config struct {
	Deadband   float64
	StepSize   float64
	InvertSign bool
}

// Decide возвращает подписанный шаг коррекции и true, если шаг нужно выдать.
//
// Чистая функция без состояния и без I/O: выдача команды — обязанность
// вызывающего. Шаг не выдаётся, если слежение выключено, interlock взведён
// или |avg| <= Deadband (граница включительно — бездействие).
func Decide(cfg Config, avg float64, enabled, interlocked bool) (float64, bool) {
	if !enabled || interlocked {
		return 0, false
	}
	if math.Abs(avg) <= cfg.Deadband {
		return 0, false
	}
	step := cfg.StepSize
	if avg < 0 {
		step = -step
	}
	if cfg.InvertSign {
		step = -step
	}
	return step, true
}
