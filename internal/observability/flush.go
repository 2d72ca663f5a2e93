package observability

import (
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/zap"
)

// Flush syncs buffered log entries before process exit. Sync errors from
// non-syncable outputs such as a terminal are ignored.
func Flush(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
		return fmt.Errorf("flush logs: %w", err)
	}
	return nil
}
