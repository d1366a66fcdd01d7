// Package httpapi — HTTP API статуса задач контроллера (JSON).
package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/logger"
)

// Snapshot — срез состояния одной задачи.
type Snapshot struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Cycle   int64  `json:"cycle"`
	Enabled bool   `json:"enabled"`
}

// Server — HTTP сервер статуса. Source возвращает текущие срезы задач.
type Server struct {
	Listen string
	Source func() []Snapshot
}

// Run поднимает сервер и работает до отмены ctx.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", s.handleTasks)
	mux.HandleFunc("/", s.handleRoot)

	ln, err := net.Listen("tcp", s.Listen)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("HTTP API на %s", s.Listen)
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("beamline-tasks\n"))
}

func (s *Server) handleTasks(w http.ResponseWriter, _ *http.Request) {
	payload := struct {
		Data []Snapshot `json:"data"`
	}{Data: s.Source()}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
