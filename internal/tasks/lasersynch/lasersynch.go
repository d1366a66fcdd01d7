// Package lasersynch — задача синхронизации лазера: циклический надзорный
// контроллер с окнами статистики, interlock с защёлкой и коррекцией слежения.
//
// Поток данных одного цикла: чтение внешних PV → обновление окон → решение
// interlock → (возможно) выключение PLL → решение слежения → (возможно) шаг
// мотора → публикация статуса → инкремент счётчика цикла.
package lasersynch

import (
	"fmt"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/buffer"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/config"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/device"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/interlock"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/task"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/tracking"
)

// PV задачи.
const (
	pvPLLOn        = "PLL_ON"
	pvAvgReset     = "AVG_RESET"
	pvAvgStart     = "AVG_START"
	pvAvgStop      = "AVG_STOP"
	pvCorr         = "CORR"
	pvCorrAvg      = "CORR_AVG"
	pvTrackingOn   = "TRACKING_ON"
	pvPLLErrTsh    = "PLL_ERR_TSH"
	pvLaserAmpTsh  = "LASER_AMP_TSH"
	pvTrackingTsh  = "TRACKING_TSH"
	pvTrackingStep = "TRACKING_STEP"
	pvIlkReset     = "ILK_RESET"
	pvIlkEngaged   = "ILK_ENGAGED"
)

// smoother — сглаживание коррекции (оконное среднее или EMA, по конфигу).
type smoother interface {
	Add(v float64) float64
	Reset()
}

type windowSmoother struct {
	buf *buffer.SampleBuffer
}

func (w *windowSmoother) Add(v float64) float64 {
	w.buf.Push(v)
	m, _ := w.buf.Mean()
	return m
}

func (w *windowSmoother) Reset() {
	w.buf.Reset()
}

// Task — задача синхронизации лазера.
type Task struct {
	cfg    config.TaskConfig
	ilk    *interlock.Engine
	smooth smoother
	motor  device.Motor
}

// New создаёт задачу по конфигу (валидированному при старте).
func New(cfg config.TaskConfig) *Task {
	return &Task{cfg: cfg}
}

// Name возвращает имя задачи.
func (t *Task) Name() string {
	return t.cfg.Name
}

// Initialize настраивает внешние устройства, пороги и подписки PV.
func (t *Task) Initialize(tc *task.Context) error {
	tc.Log.Info("инициализация задачи синхронизации лазера")

	t.ilk = interlock.New(t.cfg.InterlockBufferLength)
	if t.cfg.Smoothing == "ema" {
		t.smooth = buffer.NewEMA(t.cfg.AvgNum, t.cfg.EMAAlpha)
	} else {
		t.smooth = &windowSmoother{buf: buffer.New(t.cfg.AvgNum)}
	}

	// Пороги и параметры слежения публикуются как PV: оператор может менять их на лету.
	tc.PVs.Set(pvPLLErrTsh, t.cfg.ErrorThreshold)
	tc.PVs.Set(pvLaserAmpTsh, t.cfg.AmplitudeThreshold)
	tc.PVs.Set(pvTrackingTsh, t.cfg.Deadband)
	tc.PVs.Set(pvTrackingStep, t.cfg.StepSize)

	tc.PVs.Watch(pvAvgReset, func(_ string, v float64) {
		if v != 0 {
			tc.Log.Info("запрошен сброс окна усреднения")
		}
	})
	tc.PVs.Watch(pvTrackingOn, func(_ string, v float64) {
		tc.Log.Info("слежение: %s", onOff(v != 0))
	})
	tc.PVs.Watch(pvAvgStart, func(name string, v float64) {
		tc.Log.Debug("%s = %g", name, v)
	})
	tc.PVs.Watch(pvAvgStop, func(name string, v float64) {
		tc.Log.Debug("%s = %g", name, v)
	})

	if t.cfg.PrefixRedpitaya != "" {
		t.initRedPitaya(tc)
	}
	if t.cfg.PrefixMotor != "" {
		t.initMotor(tc)
	}

	tc.Log.Info("период цикла: %g с, окно усреднения: %d", t.cfg.Period(), t.cfg.AvgNum)
	return nil
}

// initRedPitaya выполняет стартовую последовательность RedPitaya:
// сброс сбора, источник триггера, усиление, усреднение, направление цифрового
// пина, PLL выключен, выход включён.
func (t *Task) initRedPitaya(tc *task.Context) {
	p := t.cfg.PrefixRedpitaya
	seq := []struct {
		pv    string
		value float64
	}{
		{":RESET_ACQ_CMD", 1},
		{":ACQ_TRIGGER_SRC_CMD", 1},
		{":IN2_GAIN_CMD", 1},
		{":ACQ_AVERAGING_CMD", 0},
		{":DIGITAL_P4_DIR_CMD", 1},
		{":DIGITAL_P4_STATE_CMD", 0},
		{":OUT1_FREQ_SP", 0},
		{":OUT1_ENABLE_CMD", 1},
	}
	for _, s := range seq {
		if err := tc.Gateway.Write(p+s.pv, s.value); err != nil {
			tc.Log.Error("инициализация RedPitaya: %v", err)
			return
		}
	}
	tc.Log.Info("RedPitaya инициализирована")
}

// initMotor привязывает мотор слежения и устанавливает верхний предел.
func (t *Task) initMotor(tc *task.Context) {
	m := device.NewPVMotor(tc.Gateway, "m0", t.cfg.PrefixMotor+":m0")
	if err := m.SetHighLimit(t.cfg.MotorHighLimit); err != nil {
		tc.Log.Error("инициализация мотора: %v", err)
	} else {
		tc.Log.Info("мотор инициализирован (HLM=%g)", t.cfg.MotorHighLimit)
	}
	t.motor = m
}

// Cycle выполняет одну надзорную итерацию (шаги 1–6 контрольного цикла).
func (t *Task) Cycle(tc *task.Context) error {
	gw := tc.Gateway
	prefix := t.cfg.PrefixRedpitaya

	// 1. Состояние PLL: отказ чтения трактуется как "PLL выключен" в этом цикле.
	pllOn := false
	if prefix != "" {
		if v, ok := gw.Read(prefix + ":DIGITAL_P4_STATE_STATUS"); ok {
			pllOn = v != 0
		}
	}
	tc.PVs.Set(pvPLLOn, boolPV(pllOn))

	// Командные PV: снятие защёлки interlock и сброс окна усреднения
	// (самоочищающиеся кнопки).
	if tc.PVs.Get(pvIlkReset) != 0 {
		t.ilk.Reset()
		tc.PVs.Set(pvIlkReset, 0)
		tc.Log.Info("interlock: защёлка снята по внешней команде")
	}
	if tc.PVs.Get(pvAvgReset) != 0 {
		t.smooth.Reset()
		tc.PVs.Set(pvAvgReset, 0)
		tc.Log.Info("окно усреднения сброшено")
	}

	// 2. Сбор волны коррекции и сглаживание.
	if prefix != "" {
		if err := gw.Write(prefix+":START_SS_ACQ_CMD", 1); err != nil {
			tc.Log.Debug("запуск сбора: %v", err)
		}
		if wave, ok := gw.ReadWaveform(prefix + ":IN2_DATA_MONITOR"); ok {
			corr := sliceMean(wave, int(tc.PVs.Get(pvAvgStart)), int(tc.PVs.Get(pvAvgStop)))
			tc.PVs.Set(pvCorr, corr)
			tc.PVs.Set(pvCorrAvg, t.smooth.Add(corr))
		}
	}

	// 3. Сэмплы interlock этого цикла; недоступный сигнал — nil (окно не растёт).
	var errSample, ampSample *float64
	if prefix != "" {
		if wave, ok := gw.ReadWaveform(prefix + ":IN1_DATA_MONITOR"); ok && len(wave) > 0 {
			m := wave[0]
			for _, v := range wave[1:] {
				if v > m {
					m = v
				}
			}
			errSample = &m
		}
	}
	if t.cfg.PVLaserAmp != "" {
		if v, ok := gw.Read(t.cfg.PVLaserAmp); ok {
			ampSample = &v
		}
	}

	// 4. Interlock: оценка и, при срабатывании, принудительное выключение PLL.
	dec := t.ilk.Evaluate(pllOn, errSample, ampSample,
		tc.PVs.Get(pvPLLErrTsh), tc.PVs.Get(pvLaserAmpTsh))
	tc.PVs.Set(pvIlkEngaged, boolPV(dec.Engaged))
	if dec.ForceOff {
		if prefix != "" {
			if err := gw.Write(prefix+":DIGITAL_P4_STATE_CMD", 0); err != nil {
				tc.Log.Error("выключение PLL: %v", err)
			}
		}
		tc.Log.Warn("interlock (%s) — PLL выключен", dec.Reason)
		pllOn = false
		tc.PVs.Set(pvPLLOn, 0)
	}

	// 5. Слежение: запрещено при выключенном PLL и при взведённом interlock.
	if !pllOn {
		tc.PVs.Set(pvTrackingOn, 0)
	}
	trackingOn := tc.PVs.Get(pvTrackingOn) != 0
	trackCfg := tracking.Config{
		Deadband:   tc.PVs.Get(pvTrackingTsh),
		StepSize:   tc.PVs.Get(pvTrackingStep),
		InvertSign: t.cfg.InvertSign,
	}
	if step, ok := tracking.Decide(trackCfg, tc.PVs.Get(pvCorrAvg), trackingOn, dec.Engaged); ok && t.motor != nil {
		if err := t.motor.Move(step); err != nil {
			tc.Log.Error("шаг слежения: %v", err)
		} else {
			tc.Log.Debug("слежение: шаг мотора на %g", step)
		}
	}

	// 6. Статус цикла.
	tc.PVs.SetMessage(fmt.Sprintf("PLL:%s Track:%s Ilk:%s",
		onOff(pllOn), onOff(trackingOn), dec.Reason))
	return nil
}

// Cleanup приводит выходы в безопасное состояние: PLL выключается всегда.
func (t *Task) Cleanup(tc *task.Context) {
	tc.Log.Info("остановка задачи синхронизации лазера")
	if t.cfg.PrefixRedpitaya != "" {
		if err := tc.Gateway.Write(t.cfg.PrefixRedpitaya+":DIGITAL_P4_STATE_CMD", 0); err != nil {
			tc.Log.Error("выключение PLL при остановке: %v", err)
		}
	}
	if t.motor != nil {
		_ = t.motor.Close()
	}
	tc.PVs.SetStatus(signal.StatusEnd)
	tc.PVs.SetMessage("Stopped")
}

// sliceMean возвращает среднее wave[start:stop] включительно, с ограничением
// границ до валидного диапазона; stop <= 0 означает "до конца волны".
func sliceMean(wave []float64, start, stop int) float64 {
	if len(wave) == 0 {
		return 0
	}
	if start < 0 {
		start = 0
	}
	if start > len(wave)-1 {
		start = len(wave) - 1
	}
	if stop <= 0 || stop > len(wave)-1 {
		stop = len(wave) - 1
	}
	if stop < start {
		stop = start
	}
	var sum float64
	for _, v := range wave[start : stop+1] {
		sum += v
	}
	return sum / float64(stop-start+1)
}

func boolPV(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
