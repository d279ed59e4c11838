package application

import (
	"context"

	"go.uber.org/zap"
)

// effect is a single post-commit side effect. Effects run in order after the
// primary write has committed; each failure is caught individually so it can
// neither mask nor undo the committed operation.
type effect struct {
	name string
	run  func(ctx context.Context) error
}

// runEffects executes the post-commit task list and returns a warning per
// failed effect.
func (s *BookingService) runEffects(ctx context.Context, effects []effect) []string {
	var warnings []string
	for _, e := range effects {
		if err := e.run(ctx); err != nil {
			s.logger.Warn("post-commit effect failed",
				zap.String("effect", e.name),
				zap.Error(err),
			)
			warnings = append(warnings, e.name+": "+err.Error())
		}
	}
	return warnings
}
