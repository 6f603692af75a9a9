package telemetry

import (
	"context"

	"github.com/petasbytes/go-astra/internal/metrics"
)

// EmitLocalFeatures records size and shape features of one exchange.
// Only counts are written, never text. Requires calibration mode.
func EmitLocalFeatures(ctx context.Context, user, reply string) {
	if !(CalibrationModeEnabled() && ObserveEnabled()) {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	u := metrics.CountFeatures(user)
	r := metrics.CountFeatures(reply)
	Emit("local_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "2",
		"user":             featureMap(u),
		"reply":            featureMap(r),
	})
}

func featureMap(f metrics.Features) map[string]any {
	return map[string]any{
		"bytes":    f.Bytes,
		"runes":    f.Runes,
		"words":    f.Words,
		"lines":    f.Lines,
		"bullets":  f.Bullets,
		"numbered": f.NumberedItems,
	}
}
