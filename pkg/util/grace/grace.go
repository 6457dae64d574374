package grace

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// NewGracefulContext returns context cancelled by sigint, sigterm and sighup
// or by the returned function. Blocking downloads and plotter subprocesses
// are interrupted through it.
func NewGracefulContext(l *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(ch)

		select {
		case sig := <-ch:
			if l != nil {
				l.Info("received signal, stopping",
					zap.String("signal", sig.String()))
			} else {
				fmt.Fprintf(os.Stderr, "received signal %s\n", sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
