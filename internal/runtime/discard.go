package runtime

import (
	"context"

	"github.com/aretw0/augtree/pkg/ports"
)

// discard drops the edits a failed run left staged in the store.
// Nothing reached the backing medium because Save runs only after the last
// command, so reloading is enough to return to the persisted state.
func (e *Engine) discard(ctx context.Context, run *execution, store ports.TreeStore) {
	run.logger.InfoContext(ctx, "discarding staged changes")
	if err := store.Load(); err != nil {
		run.logger.WarnContext(ctx, "failed to discard staged changes", "error", err)
	}
}
