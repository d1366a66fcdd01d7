package signal

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// TCPGateway — клиент строчного протокола PV-шлюза поверх TCP.
//
// Протокол: "GET <имя>\n" → "<значение>\n"; "GETW <имя>\n" → значения через
// пробел одной строкой; "PUT <имя> <значение>\n" → "OK\n". Любой другой ответ
// трактуется как отсутствие значения. Соединение открывается на один запрос
// с дедлайном — частоты циклов низкие, постоянное соединение не нужно.
type TCPGateway struct {
	addr    string
	timeout time.Duration
}

// NewTCPGateway создаёт шлюз к addr (host:port); timeout <= 0 — 2 секунды.
func NewTCPGateway(addr string, timeout time.Duration) *TCPGateway {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &TCPGateway{addr: addr, timeout: timeout}
}

// request отправляет одну строку запроса и возвращает одну строку ответа.
func (g *TCPGateway) request(line string) (string, error) {
	conn, err := net.DialTimeout("tcp", g.addr, g.timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(g.timeout)); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		return "", err
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// Read читает скалярный внешний PV; ok == false при любом отказе.
func (g *TCPGateway) Read(name string) (float64, bool) {
	resp, err := g.request("GET " + name)
	if err != nil || resp == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(resp, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ReadWaveform читает массив значений внешнего PV; ok == false при любом отказе.
func (g *TCPGateway) ReadWaveform(name string) ([]float64, bool) {
	resp, err := g.request("GETW " + name)
	if err != nil || resp == "" {
		return nil, false
	}
	fields := strings.Fields(resp)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Write записывает внешний PV.
func (g *TCPGateway) Write(name string, value float64) error {
	resp, err := g.request(fmt.Sprintf("PUT %s %g", name, value))
	if err != nil {
		return fmt.Errorf("gateway put %s: %w", name, err)
	}
	if resp != "OK" {
		return fmt.Errorf("gateway put %s: ответ %q", name, resp)
	}
	return nil
}
