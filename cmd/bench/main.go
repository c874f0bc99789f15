// Command bench measures exclusive message throughput of a single actor fed
// by concurrent producers.
//
// Configuration is read from the environment:
//
//	ROUNDS        messages per producer (default 100000)
//	PRODUCERS     concurrent producers (default 4)
//	INFLIGHT      unresolved sends per producer (default 256)
//	CAPACITY      mailbox capacity (default 1024)
//	HEAP_ALLOC    allocate a large buffer per message (default false)
//	METRICS_ADDR  serve Prometheus metrics on this address, e.g. ":9090"
//	LOG_LEVEL     slog level (default INFO)
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	promadapter "github.com/codewandler/actr-go/adapters/prometheus"
	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/exec"
)

var (
	rounds      = getEnvInt("ROUNDS", 100_000)
	producers   = getEnvInt("PRODUCERS", 4)
	inflight    = getEnvInt("INFLIGHT", 256)
	capacity    = getEnvInt("CAPACITY", 1024)
	heapAlloc   = getEnvBool("HEAP_ALLOC", false)
	metricsAddr = getEnv("METRICS_ADDR", "")
	logLevel    = getEnvLevel("LOG_LEVEL", slog.LevelInfo)
)

type worker struct {
	heapAlloc bool
	handled   int
	checksum  byte
}

type exclusive struct{}

func (exclusive) MsgType() string { return "exclusive" }

func (exclusive) Handle(w *worker, _ *actor.Context[*worker]) (int, error) {
	if w.heapAlloc {
		buf := make([]byte, 1_000_000)
		w.checksum ^= buf[len(buf)-1]
	} else {
		var buf [2048]byte
		w.checksum ^= buf[w.handled%len(buf)]
	}
	w.handled++
	return w.handled, nil
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, log); err != nil {
		log.Error("bench failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := promadapter.NewAllMetrics(reg)

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", slog.String("addr", metricsAddr))
	}

	ex := exec.New(0, exec.Options{Logger: log, Metrics: m.Exec})
	addr := actor.Spawn(&worker{heapAlloc: heapAlloc}, actor.Options{
		ID:       "bench",
		Capacity: capacity,
		Logger:   log,
		Executor: ex,
		Metrics:  m.Actor,
	})

	log.Info("starting",
		slog.Int("rounds", rounds),
		slog.Int("producers", producers),
		slog.Int("inflight", inflight),
		slog.Int("capacity", capacity),
		slog.Bool("heap_alloc", heapAlloc),
	)
	startAt := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for range producers {
		g.Go(func() error { return produce(gctx, addr) })
	}
	if err := g.Wait(); err != nil {
		addr.Release()
		return err
	}

	took := time.Since(startAt)
	total := rounds * producers
	handled, err := actor.Ask(ctx, addr, actor.Func[*worker, int](func(w *worker, _ *actor.Context[*worker]) (int, error) {
		return w.handled, nil
	}))
	if err != nil {
		return fmt.Errorf("read result: %w", err)
	}

	addr.Release()
	<-addr.Done()
	ex.Wait()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	log.Info("done",
		slog.Int("messages", total),
		slog.Int("handled", handled),
		slog.Duration("took", took),
		slog.Int("msgs_per_sec", int(float64(total)/took.Seconds())),
		slog.Uint64("heap_mib", mem.Alloc/1024/1024),
		slog.Uint64("gc_cycles", uint64(mem.NumGC)),
	)
	return nil
}

// produce keeps up to inflight sends outstanding and awaits them in order.
func produce(ctx context.Context, addr *actor.Addr[*worker]) error {
	pending := make([]*actor.Future[int], 0, inflight)
	flush := func() error {
		for _, f := range pending {
			if _, err := f.Await(ctx); err != nil {
				return err
			}
		}
		pending = pending[:0]
		return nil
	}

	for range rounds {
		pending = append(pending, actor.Send(ctx, addr, exclusive{}))
		if len(pending) == cap(pending) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
