// Package datalog — задача периодической записи данных в файл (csv или plain).
package datalog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/config"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/task"
)

const (
	pvValue1      = "VALUE1"
	pvValue2      = "VALUE2"
	pvValue3      = "VALUE3"
	pvLogCount    = "LOG_COUNT"
	pvLastLogTime = "LAST_LOG_TIME" // unix-время последней записи, секунды
	pvResetCount  = "RESET_COUNT"
)

// Task — задача записи данных. Цикл короткий (доли секунды); запись в файл
// выполняется не чаще log_interval.
type Task struct {
	cfg      config.TaskConfig
	file     *os.File
	path     string
	count    int64
	lastLog  time.Time
	now      func() time.Time // подменяется в тестах
}

// New создаёт задачу по конфигу.
func New(cfg config.TaskConfig) *Task {
	return &Task{cfg: cfg, now: time.Now}
}

// Name возвращает имя задачи.
func (t *Task) Name() string {
	return t.cfg.Name
}

// Initialize создаёт каталог и файл журнала; для csv пишется заголовок.
func (t *Task) Initialize(tc *task.Context) error {
	tc.Log.Info("инициализация задачи записи данных")
	if err := os.MkdirAll(t.cfg.LogDirectory, 0o755); err != nil {
		return fmt.Errorf("создание каталога %s: %w", t.cfg.LogDirectory, err)
	}
	name := fmt.Sprintf("%s_%s.%s", t.cfg.Name, t.now().Format("20060102_150405"), t.cfg.LogFormat)
	t.path = filepath.Join(t.cfg.LogDirectory, name)
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("создание файла %s: %w", t.path, err)
	}
	t.file = f
	if t.cfg.LogFormat == "csv" {
		if _, err := fmt.Fprintln(f, "timestamp,value1,value2,value3,status"); err != nil {
			return fmt.Errorf("заголовок %s: %w", t.path, err)
		}
	}
	t.lastLog = t.now()
	tc.Log.Info("запись в %s каждые %g с", t.path, t.cfg.LogInterval)
	return nil
}

// Cycle выполняет запись, если с предыдущей прошло не меньше log_interval.
func (t *Task) Cycle(tc *task.Context) error {
	if tc.PVs.Get(pvResetCount) != 0 {
		t.count = 0
		tc.PVs.Set(pvLogCount, 0)
		tc.PVs.Set(pvResetCount, 0)
		tc.Log.Info("счётчик записей сброшен")
	}

	now := t.now()
	if now.Sub(t.lastLog).Seconds() < t.cfg.LogInterval {
		return nil
	}
	t.lastLog = now

	v1 := tc.PVs.Get(pvValue1)
	v2 := tc.PVs.Get(pvValue2)
	v3 := tc.PVs.Get(pvValue3)
	ts := now.Format(time.RFC3339)

	var err error
	if t.cfg.LogFormat == "csv" {
		_, err = fmt.Fprintf(t.file, "%s,%g,%g,%g,OK\n", ts, v1, v2, v3)
	} else {
		_, err = fmt.Fprintf(t.file, "[%s] V1=%g, V2=%g, V3=%g\n", ts, v1, v2, v3)
	}
	if err != nil {
		return fmt.Errorf("запись %s: %w", t.path, err)
	}

	t.count++
	tc.PVs.Set(pvLogCount, float64(t.count))
	tc.PVs.Set(pvLastLogTime, float64(now.Unix()))
	tc.Log.Debug("запись %d", t.count)
	return nil
}

// Cleanup закрывает файл и публикует конечный статус.
func (t *Task) Cleanup(tc *task.Context) {
	tc.Log.Info("остановка задачи записи данных, всего записей: %d", t.count)
	if t.file != nil {
		_ = t.file.Close()
	}
	tc.PVs.SetStatus(signal.StatusEnd)
	tc.PVs.SetMessage("Stopped")
}
