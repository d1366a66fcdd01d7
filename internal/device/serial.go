package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// TMLMotor — мотор с контроллером TML на последовательном порту.
//
// ASCII-протокол контроллера: "POS?\r" → позиция числом, "MOV?\r" → 0/1,
// "MOVR <delta>\r" → "OK". Ответ — одна строка до CR/LF.
type TMLMotor struct {
	name string
	port *serial.Port
}

// OpenTMLMotor открывает последовательный порт контроллера.
func OpenTMLMotor(name, port string, baud int) (*TMLMotor, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        port,
		Baud:        baud,
		ReadTimeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", port, err)
	}
	return &TMLMotor{name: name, port: p}, nil
}

// Name возвращает имя устройства.
func (m *TMLMotor) Name() string {
	return m.name
}

// command отправляет команду и читает одну строку ответа (до CR/LF).
func (m *TMLMotor) command(cmd string) (string, error) {
	if err := m.port.Flush(); err != nil {
		return "", fmt.Errorf("motor %s: flush: %w", m.name, err)
	}
	if _, err := m.port.Write([]byte(cmd + "\r")); err != nil {
		return "", fmt.Errorf("motor %s: write: %w", m.name, err)
	}
	var line []byte
	b := make([]byte, 1)
	for len(line) < 256 {
		n, err := m.port.Read(b)
		if err != nil {
			return "", fmt.Errorf("motor %s: read: %w", m.name, err)
		}
		if n == 0 {
			// ReadTimeout истёк без байтов
			return "", fmt.Errorf("motor %s: таймаут ответа на %q", m.name, cmd)
		}
		if b[0] == '\r' || b[0] == '\n' {
			if len(line) == 0 {
				continue
			}
			break
		}
		line = append(line, b[0])
	}
	return strings.TrimSpace(string(line)), nil
}

// Position запрашивает позицию у контроллера.
func (m *TMLMotor) Position() (float64, error) {
	resp, err := m.command("POS?")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(resp, 64)
	if err != nil {
		return 0, fmt.Errorf("motor %s: позиция %q: %w", m.name, resp, err)
	}
	return v, nil
}

// Moving запрашивает признак движения.
func (m *TMLMotor) Moving() (bool, error) {
	resp, err := m.command("MOV?")
	if err != nil {
		return false, err
	}
	return resp != "0", nil
}

// Move выполняет относительное перемещение на delta.
func (m *TMLMotor) Move(delta float64) error {
	resp, err := m.command(fmt.Sprintf("MOVR %g", delta))
	if err != nil {
		return err
	}
	if resp != "OK" {
		return fmt.Errorf("motor %s: MOVR: ответ %q", m.name, resp)
	}
	return nil
}

// Close закрывает порт.
func (m *TMLMotor) Close() error {
	if m.port == nil {
		return nil
	}
	return m.port.Close()
}
