package testevents

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/okian/firstlevel/internal/domain/model"
	"github.com/okian/firstlevel/pkg/logger"
)

// verifyDesigns polls every submitted design until it leaves pending and
// compares the served model with the locally grouped one.
func verifyDesigns(ctx context.Context, config *Config, subs []submission, stats *Stats) error {
	log := logger.Get().Named("verify")
	log.Info(ctx, "verifying designs", logger.Int("designs", len(subs)))

	client := newHTTPClient(config.Timeout)
	deadline := time.Now().Add(config.PollTimeout)

	for _, sub := range subs {
		for {
			v, err := fetchDesign(ctx, client, config.BaseURL, sub.receipt.ID)
			if err != nil {
				return err
			}
			if v.Status == "pending" {
				if time.Now().After(deadline) {
					stats.DesignsTimedOut++
					log.Warn(ctx, "design still pending", logger.String("design_id", v.ID))
					break
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(PollInterval):
				}
				continue
			}

			switch {
			case v.Status == "failed":
				stats.DesignsFailed++
				log.Warn(ctx, "design failed",
					logger.String("design_id", v.ID),
					logger.String("kind", v.ErrorKind),
					logger.String("error", v.Error),
				)
			case v.Model == nil || !sameModel(*v.Model, sub.table.Expected):
				stats.DesignsMismatch++
				log.Warn(ctx, "design does not match local grouping",
					logger.String("design_id", v.ID),
					logger.String("subject", sub.table.Subject),
					logger.String("run", sub.table.Run),
				)
			default:
				stats.DesignsReady++
			}
			break
		}
	}

	if bad := stats.DesignsFailed + stats.DesignsMismatch + stats.DesignsTimedOut; bad > 0 {
		return fmt.Errorf("%d of %d designs did not verify", bad, len(subs))
	}
	log.Info(ctx, "all designs verified", logger.Int("ready", stats.DesignsReady))
	return nil
}

func sameModel(a, b model.ConditionModel) bool {
	return reflect.DeepEqual(a.Conditions(), b.Conditions()) &&
		reflect.DeepEqual(a.Onsets(), b.Onsets()) &&
		reflect.DeepEqual(a.Durations(), b.Durations())
}
