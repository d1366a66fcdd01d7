// Package buffer — скользящие окна сэмплов для трейлинг-статистики контрольного цикла.
package buffer

import "errors"

// ErrEmptyBuffer возвращается статистиками (Mean, Max) по пустому буферу.
// Вызывающий обязан проверять Len/IsFull перед использованием результата.
var ErrEmptyBuffer = errors.New("buffer: empty")

// SampleBuffer — FIFO фиксированной ёмкости поверх кольцевого буфера.
// Push при заполненном буфере вытесняет самый старый элемент за O(1),
// без реаллокаций. Ёмкость задаётся при создании и не меняется.
type SampleBuffer struct {
	data []float64
	head int // индекс самого старого элемента
	n    int
}

// New создаёт буфер ёмкостью capacity; при capacity <= 0 используется 1.
func New(capacity int) *SampleBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &SampleBuffer{data: make([]float64, capacity)}
}

// Push добавляет сэмпл; при переполнении вытесняет самый старый.
func (b *SampleBuffer) Push(v float64) {
	if b.n < len(b.data) {
		b.data[(b.head+b.n)%len(b.data)] = v
		b.n++
		return
	}
	b.data[b.head] = v
	b.head = (b.head + 1) % len(b.data)
}

// Len возвращает текущее число сэмплов.
func (b *SampleBuffer) Len() int {
	return b.n
}

// Cap возвращает ёмкость буфера.
func (b *SampleBuffer) Cap() int {
	return len(b.data)
}

// IsFull возвращает true, когда буфер набрал полную ёмкость.
func (b *SampleBuffer) IsFull() bool {
	return b.n == len(b.data)
}

// Reset очищает содержимое; ёмкость не меняется.
func (b *SampleBuffer) Reset() {
	b.head = 0
	b.n = 0
}

// at возвращает i-й сэмпл от самого старого (0 <= i < n).
func (b *SampleBuffer) at(i int) float64 {
	return b.data[(b.head+i)%len(b.data)]
}

// Values возвращает копию содержимого от самого старого к самому новому.
func (b *SampleBuffer) Values() []float64 {
	out := make([]float64, b.n)
	for i := 0; i < b.n; i++ {
		out[i] = b.at(i)
	}
	return out
}

// Mean возвращает среднее арифметическое; ErrEmptyBuffer по пустому буферу.
func (b *SampleBuffer) Mean() (float64, error) {
	if b.n == 0 {
		return 0, ErrEmptyBuffer
	}
	var sum float64
	for i := 0; i < b.n; i++ {
		sum += b.at(i)
	}
	return sum / float64(b.n), nil
}

// Max возвращает максимум; ErrEmptyBuffer по пустому буферу.
func (b *SampleBuffer) Max() (float64, error) {
	if b.n == 0 {
		return 0, ErrEmptyBuffer
	}
	max := b.at(0)
	for i := 1; i < b.n; i++ {
		if v := b.at(i); v > max {
			max = v
		}
	}
	return max, nil
}

// CountOver возвращает число сэмплов строго больше threshold.
func (b *SampleBuffer) CountOver(threshold float64) int {
	count := 0
	for i := 0; i < b.n; i++ {
		if b.at(i) > threshold {
			count++
		}
	}
	return count
}

// CountUnder возвращает число сэмплов строго меньше threshold.
func (b *SampleBuffer) CountUnder(threshold float64) int {
	count := 0
	for i := 0; i < b.n; i++ {
		if b.at(i) < threshold {
			count++
		}
	}
	return count
}
