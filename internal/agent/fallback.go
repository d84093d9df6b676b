package agent

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"patient-care-portal/internal/platform/metrics"
)

// Submit sends prompt through c, records the outcome under feature and logs
// failures through the request logger. An empty answer is an error.
func Submit(ctx context.Context, c Completer, feature, prompt string) (string, error) {
	start := time.Now()
	text, err := c.SubmitPrompt(ctx, prompt)
	if err == nil && text == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		metrics.RecordCompletion(feature, "error", time.Since(start))
		zerolog.Ctx(ctx).Warn().Err(err).Str("feature", feature).Msg("completion failed")
		return "", err
	}

	metrics.RecordCompletion(feature, "ok", time.Since(start))
	return text, nil
}

// SubmitWithFallback is Submit with any failure replaced by the fixed fallback
// text. The second return value reports whether the fallback was used.
func SubmitWithFallback(ctx context.Context, c Completer, feature, prompt, fallback string) (string, bool) {
	text, err := Submit(ctx, c, feature, prompt)
	if err != nil {
		return fallback, true
	}
	return text, false
}
