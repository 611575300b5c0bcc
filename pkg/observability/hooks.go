package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/utm/pkg/domain"
)

// Combine returns hooks that call each of hooks in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks

	var onStep []func(context.Context, *domain.StepEvent)
	var onHalt []func(context.Context, *domain.HaltEvent)
	var onFault []func(context.Context, *domain.FaultEvent)
	for _, h := range hooks {
		if h.OnStep != nil {
			onStep = append(onStep, h.OnStep)
		}
		if h.OnHalt != nil {
			onHalt = append(onHalt, h.OnHalt)
		}
		if h.OnFault != nil {
			onFault = append(onFault, h.OnFault)
		}
	}

	if len(onStep) > 0 {
		combined.OnStep = func(ctx context.Context, e *domain.StepEvent) {
			for _, fn := range onStep {
				fn(ctx, e)
			}
		}
	}
	if len(onHalt) > 0 {
		combined.OnHalt = func(ctx context.Context, e *domain.HaltEvent) {
			for _, fn := range onHalt {
				fn(ctx, e)
			}
		}
	}
	if len(onFault) > 0 {
		combined.OnFault = func(ctx context.Context, e *domain.FaultEvent) {
			for _, fn := range onFault {
				fn(ctx, e)
			}
		}
	}
	return combined
}

// LoggingHooks logs steps at debug level, halts at info and faults at error.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"variant", e.Variant.String(),
				"step", e.Step,
				"rule", e.RuleIndex,
				"from", e.Rule.From,
				"read", e.Read.String(),
				"to", e.Rule.To,
				"write", e.Rule.Write.String(),
				"move", e.Rule.Move.String(),
			)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			logger.InfoContext(ctx, "halt",
				"variant", e.Variant.String(),
				"outcome", e.Outcome.String(),
				"state", e.State,
				"steps", e.Steps,
			)
		},
		OnFault: func(ctx context.Context, e *domain.FaultEvent) {
			logger.ErrorContext(ctx, "fault",
				"variant", e.Variant.String(),
				"steps", e.Steps,
				"err", e.Err,
			)
		},
	}
}
