package monitor

import (
	"testing"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/config"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/task"
)

func newTestTask(t *testing.T, calc string) (*Task, *task.Context) {
	t.Helper()
	tk := New(config.TaskConfig{
		Name:            "monitoring",
		Type:            config.TypeMonitoring,
		CalculationType: calc,
	})
	tc := task.NewContext("monitoring", nil)
	if err := tk.Initialize(tc); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return tk, tc
}

func TestCycle_Calculations(t *testing.T) {
	tests := []struct {
		calc string
		want float64
	}{
		{"average", 2.0},
		{"sum", 6.0},
		{"max", 3.0},
		{"min", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.calc, func(t *testing.T) {
			tk, tc := newTestTask(t, tt.calc)
			tc.PVs.Set(pvInput1, 1.0)
			tc.PVs.Set(pvInput2, 2.0)
			tc.PVs.Set(pvInput3, 3.0)

			if err := tk.Cycle(tc); err != nil {
				t.Fatalf("Cycle: %v", err)
			}
			if got := tc.PVs.Get(pvResult); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.calc, got, tt.want)
			}
		})
	}
}

func TestCycle_SampleCount(t *testing.T) {
	tk, tc := newTestTask(t, "sum")
	for i := 0; i < 3; i++ {
		if err := tk.Cycle(tc); err != nil {
			t.Fatalf("Cycle: %v", err)
		}
	}
	if got := tc.PVs.Get(pvSampleCount); got != 3 {
		t.Errorf("SAMPLE_COUNT = %v, ожидали 3", got)
	}
	if tc.PVs.Message() != "Processed 3 samples" {
		t.Errorf("Message = %q", tc.PVs.Message())
	}

	// Самоочищающийся сброс счётчика
	tc.PVs.Set(pvReset, 1)
	if err := tk.Cycle(tc); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if tc.PVs.Get(pvReset) != 0 {
		t.Error("RESET должен самоочищаться")
	}
	if got := tc.PVs.Get(pvSampleCount); got != 1 {
		t.Errorf("SAMPLE_COUNT после сброса = %v, ожидали 1", got)
	}
}
