package signal

// Gateway — доступ к внешним PV (аналог caget/caput).
//
// Read и ReadWaveform — best-effort: отсутствие значения в этом цикле — валидный
// исход (ok == false), а не ошибка. Write — best-effort: отказ логируется
// вызывающим и не фатален для цикла.
type Gateway interface {
	Read(name string) (value float64, ok bool)
	ReadWaveform(name string) (values []float64, ok bool)
	Write(name string, value float64) error
}

// Null — шлюз-заглушка для задач без внешних сигналов: чтения отсутствуют,
// записи принимаются без эффекта.
type Null struct{}

// Read возвращает отсутствие значения.
func (Null) Read(string) (float64, bool) { return 0, false }

// ReadWaveform возвращает отсутствие значения.
func (Null) ReadWaveform(string) ([]float64, bool) { return nil, false }

// Write принимает запись без эффекта.
func (Null) Write(string, float64) error { return nil }
