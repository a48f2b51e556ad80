package service

import (
	"context"
	"log/slog"
	"sync"
)

// rollback remembers the blobs written by one operation so they can be
// deleted again if the operation is abandoned before the record is written.
type rollback struct {
	gw     BlobGateway
	logger *slog.Logger

	mu   sync.Mutex
	keys []string
}

func newRollback(gw BlobGateway, logger *slog.Logger) *rollback {
	return &rollback{gw: gw, logger: logger}
}

func (r *rollback) track(key string) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *rollback) tracked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

// run deletes every tracked blob, newest first. Failures are logged; the
// caller is already on an error path.
func (r *rollback) run(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	keys := r.tracked()
	for i := len(keys) - 1; i >= 0; i-- {
		if err := r.gw.Delete(ctx, keys[i]); err != nil {
			r.logger.Warn("rollback delete failed; blob orphaned", "key", keys[i], "error", err)
		}
	}
	r.mu.Lock()
	r.keys = nil
	r.mu.Unlock()
}
