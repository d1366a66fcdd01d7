package signal

import "testing"

func TestRegistry_GetSet(t *testing.T) {
	r := NewRegistry()
	if got := r.Get("MISSING"); got != 0 {
		t.Errorf("Get по отсутствующей PV = %v, ожидали 0", got)
	}
	if _, ok := r.Lookup("MISSING"); ok {
		t.Error("Lookup по отсутствующей PV: ожидали ok=false")
	}
	r.Set("CORR", 1.5)
	if got := r.Get("CORR"); got != 1.5 {
		t.Errorf("Get(CORR) = %v, ожидали 1.5", got)
	}
	v, ok := r.Lookup("CORR")
	if !ok || v != 1.5 {
		t.Errorf("Lookup(CORR) = %v, %v", v, ok)
	}
}

func TestRegistry_Watch(t *testing.T) {
	r := NewRegistry()
	var gotName string
	var gotValue float64
	calls := 0
	r.Watch("ENABLE", func(name string, v float64) {
		gotName, gotValue = name, v
		calls++
	})
	r.Set("ENABLE", 1)
	r.Set("OTHER", 2)
	if calls != 1 {
		t.Fatalf("колбэк вызван %d раз, ожидали 1", calls)
	}
	if gotName != "ENABLE" || gotValue != 1 {
		t.Errorf("колбэк получил %q=%v", gotName, gotValue)
	}
}

func TestRegistry_Enabled(t *testing.T) {
	r := NewRegistry()
	if r.Enabled() {
		t.Error("новая таблица: ENABLE не записан, Enabled должен быть false")
	}
	r.Set("ENABLE", 1)
	if !r.Enabled() {
		t.Error("ENABLE=1: ожидали Enabled=true")
	}
	r.Set("ENABLE", 0)
	if r.Enabled() {
		t.Error("ENABLE=0: ожидали Enabled=false")
	}
}

func TestRegistry_StatusMessageCycle(t *testing.T) {
	r := NewRegistry()
	if r.Status() != StatusRunning {
		t.Errorf("начальный статус = %v", r.Status())
	}
	r.SetStatus(StatusError)
	r.SetMessage("Error: boom")
	if r.Status() != StatusError || r.Message() != "Error: boom" {
		t.Errorf("Status/Message = %v, %q", r.Status(), r.Message())
	}

	for i := 0; i < 3; i++ {
		r.StepCycle()
	}
	if r.Cycle() != 3 {
		t.Errorf("Cycle = %d, ожидали 3", r.Cycle())
	}
	r.ResetCycle()
	if r.Cycle() != 0 {
		t.Errorf("Cycle после ResetCycle = %d", r.Cycle())
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusRunning, "RUNNING"},
		{StatusError, "ERROR"},
		{StatusEnd, "END"},
		{Status(9), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
