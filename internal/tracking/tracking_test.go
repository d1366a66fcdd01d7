package tracking

import "testing"

func TestDecide(t *testing.T) {
	cfg := Config{Deadband: 0.1, StepSize: 0.01}

	tests := []struct {
		name        string
		avg         float64
		enabled     bool
		interlocked bool
		wantStep    float64
		wantOK      bool
	}{
		{"disabled", 5.0, false, false, 0, false},
		{"interlocked", 5.0, true, true, 0, false},
		{"inside deadband", 0.05, true, false, 0, false},
		{"on boundary no action", 0.1, true, false, 0, false},
		{"negative boundary no action", -0.1, true, false, 0, false},
		{"positive error", 0.5, true, false, 0.01, true},
		{"negative error", -0.5, true, false, -0.01, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, ok := Decide(cfg, tt.avg, tt.enabled, tt.interlocked)
			if ok != tt.wantOK || step != tt.wantStep {
				t.Errorf("Decide(%v) = %v, %v; want %v, %v",
					tt.avg, step, ok, tt.wantStep, tt.wantOK)
			}
		})
	}
}

func TestDecide_InvertSign(t *testing.T) {
	cfg := Config{Deadband: 0.1, StepSize: 0.01, InvertSign: true}
	step, ok := Decide(cfg, 0.5, true, false)
	if !ok || step != -0.01 {
		t.Errorf("InvertSign при положительной ошибке: %v, %v; ожидали -0.01, true", step, ok)
	}
	step, ok = Decide(cfg, -0.5, true, false)
	if !ok || step != 0.01 {
		t.Errorf("InvertSign при отрицательной ошибке: %v, %v; ожидали 0.01, true", step, ok)
	}
}

func TestDecide_StepMagnitudeFixed(t *testing.T) {
	cfg := Config{Deadband: 0.1, StepSize: 0.01}
	// Шаг фиксированный: величина ошибки не влияет на модуль
	for _, avg := range []float64{0.11, 1.0, 100.0} {
		step, ok := Decide(cfg, avg, true, false)
		if !ok || step != 0.01 {
			t.Errorf("Decide(%v): %v, %v; ожидали шаг 0.01", avg, step, ok)
		}
	}
}
