// Command dispatchdemo demonstrates the dispatch core against a flaky HTTP
// endpoint, exposing Prometheus metrics the same way shaiso-Automata's
// worker binary does.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/metlos/sentry-go/dispatch"
	"github.com/metlos/sentry-go/dispatch/metrics"
)

// postTask posts a fixed payload to url, treating any non-2xx response or
// transport error as retryable.
type postTask struct {
	client *http.Client
	url    string
	body   string
}

func (p *postTask) Run(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, strings.NewReader(p.body))
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("dispatchdemo: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	collector := metrics.New("dispatchdemo", prometheus.DefaultRegisterer)

	exec := dispatch.NewExecutor(
		dispatch.WithCorePoolSize(4),
		dispatch.WithMaxQueueSize(256),
		dispatch.WithMaxRetries(5),
		dispatch.WithLogger(dispatch.NewSlogLogger(logger)),
		dispatch.WithMetrics(collector),
		dispatch.WithRejectedHandler(func(task dispatch.Task) {
			logger.Warn("task rejected, executor is shutting down")
		}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.Info("serving metrics", "addr", ":9090")
		if err := http.ListenAndServe(":9090", mux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	endpoint := os.Getenv("DISPATCHDEMO_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080/ingest"
	}

	client := &http.Client{Timeout: 5 * time.Second}
	for i := 0; i < 10; i++ {
		exec.Submit(&postTask{client: client, url: endpoint, body: fmt.Sprintf("event-%d", i)})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	logger.Info("shutting down")
	handle := exec.Flush(10 * time.Second)
	handle.Wait()
	exec.Shutdown()
}
