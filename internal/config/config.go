// Package config — конфигурация задач контроллера (YAML, формат как у
// исходного SPARC-контроллера: список задач с параметрами и привязками сигналов).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config — корневая конфигурация: шлюз внешних PV, HTTP API и список задач.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
	HTTP    HTTPConfig    `yaml:"http"`
	Tasks   []TaskConfig  `yaml:"tasks"`
}

// GatewayConfig — адрес шлюза внешних PV; пустой Addr = внешних сигналов нет.
type GatewayConfig struct {
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"` // например "2s"; пусто = 2s
}

// HTTPConfig — HTTP API статуса задач; пустой Listen = выключено.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// DeviceBinding — привязка одного устройства (мотор или выключатель).
type DeviceBinding struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`   // pv, tml, gpio
	Prefix string `yaml:"prefix"` // pv: префикс записей мотора/выключателя
	Port   string `yaml:"port"`   // tml: последовательный порт
	Baud   int    `yaml:"baud"`   // tml: скорость порта
	Pin    string `yaml:"pin"`    // gpio: имя пина
}

// TaskConfig — одна задача. Поля сгруппированы по типу задачи; неиспользуемые
// для данного типа игнорируются. Пустая привязка сигнала отключает функцию.
type TaskConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // laser_synch, check_motor_movement, monitoring, data_logging
	Disable bool   `yaml:"disable"`

	LoopPeriod float64 `yaml:"loop_period"` // секунды; приоритет над update_rate
	UpdateRate float64 `yaml:"update_rate"` // Гц; период = 1/update_rate

	// laser_synch
	AvgNum                int     `yaml:"avg_num"`
	InterlockBufferLength int     `yaml:"interlock_buffer_length"`
	ErrorThreshold        float64 `yaml:"error_threshold"`
	AmplitudeThreshold    float64 `yaml:"amplitude_threshold"`
	Deadband              float64 `yaml:"deadband"`
	StepSize              float64 `yaml:"step_size"`
	InvertSign            bool    `yaml:"invert_sign"`
	Smoothing             string  `yaml:"smoothing"` // window | ema
	EMAAlpha              float64 `yaml:"ema_alpha"`
	PrefixRedpitaya       string  `yaml:"prefix_redpitaya"`
	PrefixMotor           string  `yaml:"prefix_motor"`
	PVLaserAmp            string  `yaml:"pv_laser_amp"`
	MotorHighLimit        float64 `yaml:"motor_high_limit"`

	// check_motor_movement
	GraceCycles int64           `yaml:"grace_cycles"` // подавление актуации первые N циклов
	Motors      []DeviceBinding `yaml:"motors"`
	Switchoff   []DeviceBinding `yaml:"switchoff"`

	// monitoring
	CalculationType string `yaml:"calculation_type"` // average, sum, max, min

	// data_logging
	LogInterval  float64 `yaml:"log_interval"` // секунды между записями
	LogDirectory string  `yaml:"log_directory"`
	LogFormat    string  `yaml:"log_format"` // csv | plain
}

// Известные типы задач.
const (
	TypeLaserSynch  = "laser_synch"
	TypeMotorWatch  = "check_motor_movement"
	TypeMonitoring  = "monitoring"
	TypeDataLogging = "data_logging"
)

// Default возвращает конфиг по умолчанию (одна задача laser_synch без привязок).
func Default() *Config {
	c := &Config{
		Tasks: []TaskConfig{{
			Name: "laser_synch",
			Type: TypeLaserSynch,
		}},
	}
	applyDefaults(c)
	return c
}

// Load читает конфиг из YAML и применяет значения по умолчанию.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	for i := range c.Tasks {
		t := &c.Tasks[i]
		switch t.Type {
		case TypeLaserSynch:
			if t.LoopPeriod == 0 && t.UpdateRate == 0 {
				t.LoopPeriod = 0.2
			}
			if t.AvgNum == 0 {
				t.AvgNum = 10
			}
			if t.InterlockBufferLength == 0 {
				t.InterlockBufferLength = 10
			}
			if t.ErrorThreshold == 0 {
				t.ErrorThreshold = 1.0
			}
			if t.Deadband == 0 {
				t.Deadband = 0.1
			}
			if t.StepSize == 0 {
				t.StepSize = 0.01
			}
			if t.Smoothing == "" {
				t.Smoothing = "window"
			}
			if t.EMAAlpha == 0 {
				t.EMAAlpha = 0.1
			}
			if t.MotorHighLimit == 0 {
				t.MotorHighLimit = 2.6
			}
		case TypeMotorWatch:
			if t.LoopPeriod == 0 && t.UpdateRate == 0 {
				t.UpdateRate = 1.0
			}
			if t.GraceCycles == 0 {
				t.GraceCycles = 10
			}
		case TypeMonitoring:
			if t.LoopPeriod == 0 && t.UpdateRate == 0 {
				t.UpdateRate = 1.0
			}
			if t.CalculationType == "" {
				t.CalculationType = "average"
			}
		case TypeDataLogging:
			if t.LoopPeriod == 0 && t.UpdateRate == 0 {
				t.LoopPeriod = 0.5
			}
			if t.LogInterval == 0 {
				t.LogInterval = 10.0
			}
			if t.LogDirectory == "" {
				t.LogDirectory = "./logs"
			}
			if t.LogFormat == "" {
				t.LogFormat = "csv"
			}
		}
	}
}

// Period возвращает период цикла задачи в секундах (loop_period или 1/update_rate).
func (t *TaskConfig) Period() float64 {
	if t.LoopPeriod > 0 {
		return t.LoopPeriod
	}
	if t.UpdateRate > 0 {
		return 1.0 / t.UpdateRate
	}
	return 1.0
}

// Validate проверяет конфиг при старте; любая ошибка фатальна — задачи не стартуют.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i := range c.Tasks {
		t := &c.Tasks[i]
		if t.Name == "" {
			return fmt.Errorf("config: task #%d: пустое имя", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("config: task %s: дублирующееся имя", t.Name)
		}
		seen[t.Name] = true
		if t.LoopPeriod < 0 || t.UpdateRate < 0 {
			return fmt.Errorf("config: task %s: отрицательный период цикла", t.Name)
		}
		switch t.Type {
		case TypeLaserSynch:
			if t.AvgNum <= 0 {
				return fmt.Errorf("config: task %s: avg_num должен быть > 0", t.Name)
			}
			if t.InterlockBufferLength <= 0 {
				return fmt.Errorf("config: task %s: interlock_buffer_length должен быть > 0", t.Name)
			}
			if t.Deadband < 0 {
				return fmt.Errorf("config: task %s: deadband должен быть >= 0", t.Name)
			}
			if t.StepSize <= 0 {
				return fmt.Errorf("config: task %s: step_size должен быть > 0", t.Name)
			}
			if t.Smoothing != "window" && t.Smoothing != "ema" {
				return fmt.Errorf("config: task %s: smoothing %q (ожидается window или ema)", t.Name, t.Smoothing)
			}
		case TypeMotorWatch:
			if t.GraceCycles < 0 {
				return fmt.Errorf("config: task %s: grace_cycles должен быть >= 0", t.Name)
			}
			for _, d := range append(append([]DeviceBinding{}, t.Motors...), t.Switchoff...) {
				if err := validateBinding(t.Name, d); err != nil {
					return err
				}
			}
		case TypeMonitoring:
			switch t.CalculationType {
			case "average", "sum", "max", "min":
			default:
				return fmt.Errorf("config: task %s: calculation_type %q", t.Name, t.CalculationType)
			}
		case TypeDataLogging:
			if t.LogInterval <= 0 {
				return fmt.Errorf("config: task %s: log_interval должен быть > 0", t.Name)
			}
			if t.LogFormat != "csv" && t.LogFormat != "plain" {
				return fmt.Errorf("config: task %s: log_format %q (ожидается csv или plain)", t.Name, t.LogFormat)
			}
		default:
			return fmt.Errorf("config: task %s: неизвестный тип %q", t.Name, t.Type)
		}
	}
	return nil
}

func validateBinding(task string, d DeviceBinding) error {
	if d.Name == "" {
		return fmt.Errorf("config: task %s: устройство без имени", task)
	}
	switch d.Type {
	case "pv":
		if d.Prefix == "" {
			return fmt.Errorf("config: task %s: устройство %s: pv требует prefix", task, d.Name)
		}
	case "tml":
		if d.Port == "" {
			return fmt.Errorf("config: task %s: устройство %s: tml требует port", task, d.Name)
		}
	case "gpio":
		if d.Pin == "" {
			return fmt.Errorf("config: task %s: устройство %s: gpio требует pin", task, d.Name)
		}
	default:
		return fmt.Errorf("config: task %s: устройство %s: неизвестный тип %q", task, d.Name, d.Type)
	}
	return nil
}
