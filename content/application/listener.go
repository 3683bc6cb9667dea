package application

import (
	"github.com/rs/zerolog"

	"github.com/samchencode/stroke-mgmt-sub000/shared/notify"
)

// LogRefreshes logs every event received on sub until the subscription is closed.
func LogRefreshes(sub *notify.Subscription, logger zerolog.Logger) {
	for event := range sub.C() {
		if event.Absent {
			logger.Info().
				Str("entity", event.Entity).
				Str("query", event.Query).
				Strs("ids", event.IDs).
				Msg("Entity removed from source")
			continue
		}
		logger.Info().
			Str("entity", event.Entity).
			Str("query", event.Query).
			Int("count", len(event.IDs)).
			Msg("Refreshed from source")
	}
}
