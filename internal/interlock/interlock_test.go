package interlock

import "testing"

func fp(v float64) *float64 { return &v }

func TestEngine_EngageOnFullErrorWindow(t *testing.T) {
	e := New(3)

	// Пока окно не заполнено, срабатывания нет даже при нарушениях
	for i := 0; i < 2; i++ {
		dec := e.Evaluate(true, fp(5.0), nil, 1.0, 0)
		if dec.Engaged || dec.ForceOff {
			t.Fatalf("цикл %d: срабатывание до заполнения окна: %+v", i, dec)
		}
	}

	// Третий нарушающий сэмпл заполняет окно — срабатывание
	dec := e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	if !dec.Engaged || !dec.ForceOff {
		t.Fatalf("ожидали срабатывание по заполненному окну, получили %+v", dec)
	}
	if dec.Reason != ReasonErrorThreshold {
		t.Errorf("Reason = %v, ожидали error_threshold", dec.Reason)
	}
}

func TestEngine_SingleCompliantSampleBlocks(t *testing.T) {
	e := New(3)
	e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	e.Evaluate(true, fp(0.5), nil, 1.0, 0) // один соответствующий сэмпл
	dec := e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	if dec.Engaged {
		t.Fatalf("соответствующий сэмпл в окне должен блокировать срабатывание: %+v", dec)
	}
	// Сэмпл ровно на пороге не нарушает (сравнение строгое)
	e2 := New(2)
	e2.Evaluate(true, fp(1.0), nil, 1.0, 0)
	dec = e2.Evaluate(true, fp(1.0), nil, 1.0, 0)
	if dec.Engaged {
		t.Errorf("сэмплы на пороге не должны взводить interlock: %+v", dec)
	}
}

func TestEngine_AmplitudeReason(t *testing.T) {
	e := New(2)
	e.Evaluate(true, nil, fp(0.1), 1.0, 0.5)
	dec := e.Evaluate(true, nil, fp(0.2), 1.0, 0.5)
	if !dec.Engaged || dec.Reason != ReasonAmplitudeThreshold {
		t.Fatalf("ожидали срабатывание по амплитуде, получили %+v", dec)
	}
}

func TestEngine_LatchUntilReset(t *testing.T) {
	e := New(2)
	e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	if !e.Engaged() {
		t.Fatal("защёлка должна быть взведена")
	}

	// Соответствующие сэмплы защёлку не снимают; ForceOff повторяется каждый цикл
	for i := 0; i < 5; i++ {
		dec := e.Evaluate(true, fp(0.1), nil, 1.0, 0)
		if !dec.Engaged || !dec.ForceOff {
			t.Fatalf("цикл %d: защёлка снялась без Reset: %+v", i, dec)
		}
	}
	if e.LastReason() != ReasonErrorThreshold {
		t.Errorf("LastReason = %v", e.LastReason())
	}

	e.Reset()
	if e.Engaged() || e.LastReason() != ReasonNone {
		t.Error("после Reset защёлка должна быть снята")
	}
	// Reset очищает окна: одно нарушение не взводит заново
	dec := e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	if dec.Engaged {
		t.Errorf("после Reset окно должно быть пустым: %+v", dec)
	}
}

func TestEngine_InactiveSkipsEvaluation(t *testing.T) {
	e := New(2)
	// Подсистема неактивна: окна растут, но оценки нет
	dec := e.Evaluate(false, fp(5.0), nil, 1.0, 0)
	dec = e.Evaluate(false, fp(5.0), nil, 1.0, 0)
	if dec.Engaged || dec.ForceOff {
		t.Fatalf("по неактивной подсистеме interlock не оценивается: %+v", dec)
	}

	// Взводим защёлку при активной подсистеме
	e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	if !e.Engaged() {
		t.Fatal("окно заполнено нарушениями, ожидали срабатывание")
	}

	// Неактивная подсистема: решение сообщает engaged=false, защёлка сохраняется
	dec = e.Evaluate(false, nil, nil, 1.0, 0)
	if dec.Engaged {
		t.Errorf("решение по неактивной подсистеме: engaged должен быть false")
	}
	if !e.Engaged() {
		t.Error("внутренняя защёлка должна сохраняться до Reset")
	}
}

func TestEngine_NilSamples(t *testing.T) {
	e := New(2)
	e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	// Недоступный сигнал: окно не растёт, подстановки нуля нет
	for i := 0; i < 10; i++ {
		dec := e.Evaluate(true, nil, nil, 1.0, 0)
		if dec.Engaged {
			t.Fatalf("nil-сэмплы не должны заполнять окно: %+v", dec)
		}
	}
	dec := e.Evaluate(true, fp(5.0), nil, 1.0, 0)
	if !dec.Engaged {
		t.Errorf("второй реальный нарушающий сэмпл должен заполнить окно: %+v", dec)
	}
}

func TestEngine_Scenario(t *testing.T) {
	// Порог ошибки 2.0, окно 3: 2.5, 2.1, 0.5 — нет; затем 3.0, 2.1, 3.0 с
	// вытеснением 0.5 — окно 2.1 3.0 3.0, все нарушают — срабатывание.
	e := New(3)
	samples := []float64{2.5, 2.1, 0.5, 3.0, 2.1}
	for i, s := range samples {
		dec := e.Evaluate(true, fp(s), nil, 2.0, 0)
		if dec.Engaged {
			t.Fatalf("сэмпл #%d (%g): преждевременное срабатывание", i, s)
		}
	}
	dec := e.Evaluate(true, fp(3.0), nil, 2.0, 0)
	if !dec.Engaged || dec.Reason != ReasonErrorThreshold {
		t.Fatalf("окно 2.1 3.0 3.0 при пороге 2.0: ожидали срабатывание, получили %+v", dec)
	}
}

func TestReason_String(t *testing.T) {
	tests := []struct {
		r    Reason
		want string
	}{
		{ReasonNone, "none"},
		{ReasonErrorThreshold, "error_threshold"},
		{ReasonAmplitudeThreshold, "amplitude_threshold"},
		{Reason(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Reason(%d).String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}
