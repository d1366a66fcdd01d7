// beamline-tasks — задачи управления линией пучка SPARC.
//
// Каждая задача — циклический контроллер: периодически читает внешние process
// variable, выполняет расчёт и пишет результаты или управляет устройствами.
// Состав задач:
//   - laser_synch — синхронизация лазера: окна статистики, interlock, слежение
//   - check_motor_movement — контроль движения моторов и switchoff-устройства
//   - monitoring — агрегат входных PV (average/sum/max/min)
//   - data_logging — периодическая запись данных в файл
//
// Использование:
//
//	beamline-tasks -config beamline-tasks.yml          — запуск всех задач
//	beamline-tasks -config beamline-tasks.yml -validate — только проверка конфига
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/config"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/httpapi"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/logger"
	sig "github.com/infn-epics/sparc-beamline-controller-tasks/internal/signal"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/task"
	"github.com/infn-epics/sparc-beamline-controller-tasks/internal/tasks"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигу (по умолчанию beamline-tasks.yml)")
	validate := flag.Bool("validate", false, "проверить конфиг и выйти")
	httpListen := flag.String("http", "", "адрес HTTP API статуса (переопределяет config)")
	quiet := flag.Bool("quiet", false, "меньше вывода")
	debug := flag.Bool("debug", false, "отладочный вывод задач")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil && *configPath != "" {
		log.Fatalf("config: %v", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if *httpListen != "" {
		cfg.HTTP.Listen = *httpListen
	}

	// Ошибка конфигурации фатальна: задачи не стартуют.
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	if *validate {
		fmt.Println("конфиг корректен")
		return
	}

	logger.Quiet = *quiet
	logger.Debug = *debug
	runTasks(cfg, *quiet)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = "beamline-tasks.yml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return config.Load(path)
}

// runTasks запускает планировщик на каждую задачу; по SIGINT/SIGTERM контекст
// отменяется, каждая задача завершает текущий цикл и выполняет cleanup.
func runTasks(cfg *config.Config, quiet bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		logger.Info("получен сигнал %v, завершение...", s)
		cancel()
	}()

	gw := buildGateway(cfg)

	var scheds []*task.Scheduler
	var wg sync.WaitGroup
	for _, tcfg := range cfg.Tasks {
		if tcfg.Disable {
			continue
		}
		t, err := tasks.New(tcfg)
		if err != nil {
			log.Fatalf("task %s: %v", tcfg.Name, err)
		}
		tc := task.NewContext(tcfg.Name, gw)
		tc.PVs.Set("ENABLE", 1)
		period := time.Duration(tcfg.Period() * float64(time.Second))
		sched := task.NewScheduler(t, tc, period)
		scheds = append(scheds, sched)
		wg.Add(1)
		go func(s *task.Scheduler) {
			defer wg.Done()
			if err := s.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("%s: %v", s.TaskName(), err)
			}
		}(sched)
	}
	if len(scheds) == 0 {
		logger.Info("нет активных задач")
		return
	}
	logger.Info("запущено задач: %d", len(scheds))

	if cfg.HTTP.Listen != "" {
		srv := &httpapi.Server{
			Listen: cfg.HTTP.Listen,
			Source: func() []httpapi.Snapshot { return snapshots(scheds) },
		}
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("http api: %v", err)
			}
		}()
	}

	wg.Wait()
	if !quiet {
		fmt.Println("beamline-tasks: все задачи остановлены")
	}
}

func buildGateway(cfg *config.Config) sig.Gateway {
	if cfg.Gateway.Addr == "" {
		return sig.Null{}
	}
	timeout := time.Duration(0)
	if cfg.Gateway.Timeout != "" {
		d, err := time.ParseDuration(cfg.Gateway.Timeout)
		if err != nil {
			log.Fatalf("config: gateway timeout %q: %v", cfg.Gateway.Timeout, err)
		}
		timeout = d
	}
	return sig.NewTCPGateway(cfg.Gateway.Addr, timeout)
}

func snapshots(scheds []*task.Scheduler) []httpapi.Snapshot {
	out := make([]httpapi.Snapshot, 0, len(scheds))
	for _, s := range scheds {
		pvs := s.Context().PVs
		out = append(out, httpapi.Snapshot{
			Name:    s.TaskName(),
			State:   s.State().String(),
			Status:  pvs.Status().String(),
			Message: pvs.Message(),
			Cycle:   pvs.Cycle(),
			Enabled: pvs.Enabled(),
		})
	}
	return out
}
