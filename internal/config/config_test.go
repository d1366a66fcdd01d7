package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beamline-tasks.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
gateway:
  addr: "127.0.0.1:5064"
  timeout: "3s"
http:
  listen: ":8080"
tasks:
  - name: laser_synch
    type: laser_synch
    loop_period: 0.5
    avg_num: 20
    prefix_redpitaya: "SPARC:RP"
    pv_laser_amp: "SPARC:LASER:AMP"
  - name: motors
    type: check_motor_movement
    grace_cycles: 5
    motors:
      - name: m0
        type: pv
        prefix: "SPARC:MOT:m0"
    switchoff:
      - name: shutter
        type: pv
        prefix: "SPARC:SHUTTER:CMD"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Gateway.Addr != "127.0.0.1:5064" || c.Gateway.Timeout != "3s" {
		t.Errorf("gateway = %+v", c.Gateway)
	}
	if c.HTTP.Listen != ":8080" {
		t.Errorf("http.listen = %q", c.HTTP.Listen)
	}
	if len(c.Tasks) != 2 {
		t.Fatalf("tasks = %d, ожидали 2", len(c.Tasks))
	}

	ls := c.Tasks[0]
	if ls.LoopPeriod != 0.5 || ls.AvgNum != 20 {
		t.Errorf("laser_synch: period=%v avg_num=%d", ls.LoopPeriod, ls.AvgNum)
	}
	// Незаданные поля получают значения по умолчанию
	if ls.InterlockBufferLength != 10 || ls.Smoothing != "window" || ls.MotorHighLimit != 2.6 {
		t.Errorf("laser_synch defaults: %+v", ls)
	}

	mw := c.Tasks[1]
	if mw.GraceCycles != 5 || len(mw.Motors) != 1 || len(mw.Switchoff) != 1 {
		t.Errorf("motorwatch: %+v", mw)
	}
	if mw.UpdateRate != 1.0 {
		t.Errorf("motorwatch update_rate по умолчанию = %v", mw.UpdateRate)
	}

	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("отсутствующий файл: ожидали ошибку")
	}
	path := writeConfig(t, "tasks: [not valid yaml")
	if _, err := Load(path); err == nil {
		t.Error("битый YAML: ожидали ошибку")
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if len(c.Tasks) != 1 || c.Tasks[0].Type != TypeLaserSynch {
		t.Fatalf("Default: %+v", c.Tasks)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("конфиг по умолчанию должен проходить Validate: %v", err)
	}
	if got := c.Tasks[0].Period(); got != 0.2 {
		t.Errorf("период по умолчанию = %v, ожидали 0.2", got)
	}
}

func TestTaskConfig_Period(t *testing.T) {
	tests := []struct {
		loop float64
		rate float64
		want float64
	}{
		{0.5, 0, 0.5},
		{0, 2.0, 0.5},
		{0.25, 4.0, 0.25}, // loop_period приоритетнее
		{0, 0, 1.0},
	}
	for _, tt := range tests {
		tc := TaskConfig{LoopPeriod: tt.loop, UpdateRate: tt.rate}
		if got := tc.Period(); got != tt.want {
			t.Errorf("Period(loop=%v, rate=%v) = %v, want %v", tt.loop, tt.rate, got, tt.want)
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	base := func() TaskConfig {
		return TaskConfig{
			Name: "t", Type: TypeLaserSynch,
			AvgNum: 10, InterlockBufferLength: 10,
			StepSize: 0.01, Smoothing: "window",
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Tasks[0].Name = "" }},
		{"duplicate name", func(c *Config) { c.Tasks = append(c.Tasks, c.Tasks[0]) }},
		{"negative period", func(c *Config) { c.Tasks[0].LoopPeriod = -1 }},
		{"bad avg_num", func(c *Config) { c.Tasks[0].AvgNum = 0 }},
		{"bad interlock length", func(c *Config) { c.Tasks[0].InterlockBufferLength = -1 }},
		{"negative deadband", func(c *Config) { c.Tasks[0].Deadband = -0.1 }},
		{"bad step", func(c *Config) { c.Tasks[0].StepSize = 0 }},
		{"bad smoothing", func(c *Config) { c.Tasks[0].Smoothing = "median" }},
		{"unknown type", func(c *Config) { c.Tasks[0].Type = "bogus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Tasks: []TaskConfig{base()}}
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("ожидали ошибку валидации")
			}
		})
	}
}

func TestValidate_Bindings(t *testing.T) {
	mk := func(b DeviceBinding) *Config {
		return &Config{Tasks: []TaskConfig{{
			Name: "mw", Type: TypeMotorWatch,
			Motors: []DeviceBinding{b},
		}}}
	}
	if err := mk(DeviceBinding{Name: "m0", Type: "pv", Prefix: "P"}).Validate(); err != nil {
		t.Errorf("валидная pv-привязка: %v", err)
	}
	bad := []DeviceBinding{
		{Type: "pv", Prefix: "P"},          // без имени
		{Name: "m", Type: "pv"},            // pv без prefix
		{Name: "m", Type: "tml"},           // tml без port
		{Name: "m", Type: "gpio"},          // gpio без pin
		{Name: "m", Type: "rs485"},         // неизвестный тип
	}
	for _, b := range bad {
		if err := mk(b).Validate(); err == nil {
			t.Errorf("привязка %+v: ожидали ошибку", b)
		}
	}
}

func TestValidate_MonitoringAndDataLogging(t *testing.T) {
	c := &Config{Tasks: []TaskConfig{
		{Name: "mon", Type: TypeMonitoring, CalculationType: "average"},
		{Name: "log", Type: TypeDataLogging, LogInterval: 10, LogFormat: "csv"},
	}}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	c.Tasks[0].CalculationType = "median"
	if err := c.Validate(); err == nil {
		t.Error("calculation_type median: ожидали ошибку")
	}
	c.Tasks[0].CalculationType = "sum"
	c.Tasks[1].LogFormat = "xml"
	if err := c.Validate(); err == nil {
		t.Error("log_format xml: ожидали ошибку")
	}
}
