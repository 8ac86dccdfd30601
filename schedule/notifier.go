package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PostFunc delivers the upcoming occurrences to Discord. Wired to a webhook
// in main.
type PostFunc func(ctx context.Context, occurrences []Occurrence) error

// Notifier posts the stream schedule once at startup and then once a week at
// the configured anchor.
type Notifier struct {
	schedule *Schedule
	post     PostFunc
	log      *zap.SugaredLogger

	anchorWeekday time.Weekday
	anchorHour    int
}

func NewNotifier(s *Schedule, post PostFunc, log *zap.SugaredLogger, anchorWeekday time.Weekday, anchorHour int) *Notifier {
	return &Notifier{
		schedule:      s,
		post:          post,
		log:           log,
		anchorWeekday: anchorWeekday,
		anchorHour:    anchorHour,
	}
}

// Start blocks until ctx is cancelled. Failures are logged and the notifier
// keeps its cadence.
func (n *Notifier) Start(ctx context.Context) {
	n.send(ctx)

	for {
		next := n.schedule.NextAnchor(time.Now(), n.anchorWeekday, n.anchorHour)
		n.log.Infow("next schedule post", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			n.send(ctx)
		}
	}
}

func (n *Notifier) send(ctx context.Context) {
	occurrences := n.schedule.NextOccurrences(time.Now())
	if len(occurrences) == 0 {
		return
	}

	if err := n.post(ctx, occurrences); err != nil {
		n.log.With("error", err).Warn("failed to post stream schedule")
		return
	}

	n.log.Info("posted stream schedule")
}
