// Package leadtime estimates supplier delivery dates from order size.
package leadtime

import (
	"context"
	"time"

	"github.com/angelmondragon/paperledger/pkg/dates"
	"github.com/angelmondragon/paperledger/pkg/logger"
)

// DelayDays maps an order quantity to the supplier's delay in days.
func DelayDays(quantity int) int {
	switch {
	case quantity <= 10:
		return 0
	case quantity <= 100:
		return 1
	case quantity <= 1000:
		return 4
	default:
		return 7
	}
}

// Model resolves delivery dates. The clock is swappable for tests.
type Model struct {
	logg *logger.Logger
	now  func() time.Time
}

func New(logg *logger.Logger) *Model {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Model{logg: logg, now: time.Now}
}

// DeliveryDate adds the quantity's delay to start. An unparseable start falls
// back to today.
func (m *Model) DeliveryDate(ctx context.Context, start string, quantity int) time.Time {
	day, err := dates.Parse(start)
	if err != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{"start_date": start, "quantity": quantity})
		m.logg.Warn(ctx, "unparseable delivery start date, using today")
		day = dates.Day(m.now())
	}
	return dates.AddDays(day, DelayDays(quantity))
}

// From is DeliveryDate for an already-parsed start.
func (m *Model) From(start time.Time, quantity int) time.Time {
	return dates.AddDays(dates.Day(start), DelayDays(quantity))
}
