package macset

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// Report yields a header line followed by one canonical address per key.
// It does not modify the set and can be ranged over any number of times.
func (s *Set[T]) Report(title string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(fmt.Sprintf("MAC set '%s' with %d entries:", title, s.Len())) {
			return
		}
		for k := range s.Keys() {
			if !yield(k.String()) {
				return
			}
		}
	}
}

// LogAll writes Report(title) to logger at debug level.
func (s *Set[T]) LogAll(ctx context.Context, logger *slog.Logger, title string) {
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	for line := range s.Report(title) {
		logger.DebugContext(ctx, line, slog.String("set", title))
	}
}
