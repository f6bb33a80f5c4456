package engine

import (
	"context"
	"time"

	"github.com/zenwatch/zenwatch/metrics"
)

func StartMetricsUpdater(ctx context.Context, server *Server) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.SetTopicCount(server.store.Count())
				metrics.SetViewerCount(server.hub.SessionCount())
			}
		}
	}()
}
