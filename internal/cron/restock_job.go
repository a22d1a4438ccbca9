package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/paperledger/internal/restock"
	"github.com/angelmondragon/paperledger/pkg/dates"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"go.uber.org/multierr"
)

const restockJobName = "restock-inventory"

// RestockJobParams configure the scheduled batch restock.
type RestockJobParams struct {
	Logger           *logger.Logger
	Restock          restock.Service
	BufferMultiplier float64
	// Now defaults to time.Now.
	Now func() time.Time
}

type restockJob struct {
	logg       *logger.Logger
	restock    restock.Service
	multiplier float64
	now        func() time.Time
}

// NewRestockJob builds the job that restocks every under-threshold item as
// of the current day.
func NewRestockJob(params RestockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Restock == nil {
		return nil, fmt.Errorf("restock service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &restockJob{
		logg:       params.Logger,
		restock:    params.Restock,
		multiplier: params.BufferMultiplier,
		now:        now,
	}, nil
}

func (j *restockJob) Name() string { return restockJobName }

// Run reports every per-item failure in the returned error while still
// restocking the remaining items.
func (j *restockJob) Run(ctx context.Context) error {
	asOf := dates.Day(j.now().UTC())
	ctx = j.logg.WithAsOf(ctx, dates.Format(asOf))

	report, err := j.restock.RestockInventory(ctx, asOf, j.multiplier)
	if err != nil {
		return fmt.Errorf("restock inventory: %w", err)
	}

	var errs error
	for _, failed := range report.Failed() {
		errs = multierr.Append(errs, fmt.Errorf("%s: %s", failed.ItemName, failed.Status))
	}

	ctx = j.logg.WithFields(ctx, map[string]any{
		"items_considered": len(report.RestockedItems),
		"items_restocked":  report.TotalItemsRestocked,
		"items_failed":     len(multierr.Errors(errs)),
		"restock_cost":     report.TotalRestockCost.StringFixed(2),
	})
	j.logg.Info(ctx, "batch restock finished")
	return errs
}
