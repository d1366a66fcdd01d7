// Package signal — таблица process variable (PV) задачи и шлюз к внешним сигналам.
package signal

import "sync"

// Status — статус задачи, публикуемый в STATUS.
type Status int

const (
	StatusRunning Status = iota
	StatusError
	StatusEnd
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusError:
		return "ERROR"
	case StatusEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// WatchFunc — колбэк записи PV; вызывается синхронно в горутине пишущего.
type WatchFunc func(name string, value float64)

// Registry — таблица PV одной задачи. Мутирует её только цикл-владелец;
// RWMutex защищает конкурентные чтения (HTTP API, внешние записи ENABLE).
type Registry struct {
	mu      sync.RWMutex
	values  map[string]float64
	watches map[string][]WatchFunc
	status  Status
	message string
	cycle   int64
}

// NewRegistry создаёт пустую таблицу PV.
func NewRegistry() *Registry {
	return &Registry{
		values:  make(map[string]float64),
		watches: make(map[string][]WatchFunc),
	}
}

// Get возвращает значение PV; 0, если PV не записывалась (политика get-or-zero,
// как у исходных задач).
func (r *Registry) Get(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[name]
}

// Lookup возвращает значение PV и признак её существования.
func (r *Registry) Lookup(name string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[name]
	return v, ok
}

// Set записывает PV и уведомляет подписчиков записи.
func (r *Registry) Set(name string, v float64) {
	r.mu.Lock()
	r.values[name] = v
	fns := r.watches[name]
	r.mu.Unlock()
	for _, fn := range fns {
		fn(name, v)
	}
}

// Watch подписывает колбэк на записи PV name (аналог handle_pv_write).
func (r *Registry) Watch(name string, fn WatchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watches[name] = append(r.watches[name], fn)
}

// Enabled возвращает состояние задачи по PV ENABLE.
func (r *Registry) Enabled() bool {
	return r.Get("ENABLE") != 0
}

// SetStatus публикует статус задачи.
func (r *Registry) SetStatus(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
}

// Status возвращает текущий статус задачи.
func (r *Registry) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// SetMessage публикует человекочитаемое сообщение задачи.
func (r *Registry) SetMessage(m string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = m
}

// Message возвращает текущее сообщение задачи.
func (r *Registry) Message() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.message
}

// Cycle возвращает счётчик циклов задачи.
func (r *Registry) Cycle() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cycle
}

// StepCycle инкрементирует счётчик циклов (ровно один раз за успешный цикл).
func (r *Registry) StepCycle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycle++
}

// ResetCycle обнуляет счётчик циклов (явная команда сброса).
func (r *Registry) ResetCycle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycle = 0
}
