//go:build statsview

package statsview

import (
	"context"
	"log/slog"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Address is where the stats server listens.
const Address = "localhost:12600"

const path = "/debug/statsview"

// Launch starts the stats server in its own goroutine. The server is shut
// down when ctx is cancelled.
func Launch(ctx context.Context) error {
	viewer.SetConfiguration(viewer.WithAddr(Address))
	mgr := statsview.New()

	go mgr.Start()
	go func() {
		<-ctx.Done()
		mgr.Stop()
	}()

	slog.Info("Stats server available", "url", "http://"+Address+path)
	return nil
}

// Available reports whether this binary was built with the stats server.
func Available() bool {
	return true
}
