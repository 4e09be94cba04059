// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/Larshalvorhansen/termType/internal/model"
)

// RunLister reads stored runs.
type RunLister interface {
	ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunAggregate, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Runs   []model.RunAggregate
	Totals Totals
	Curve  []float64
}

// BuildReport loads runs and prepares the totals and the WPM curve.
func BuildReport(ctx context.Context, st RunLister, cfg model.HistoryConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return Report{
		Runs:   runs,
		Totals: ForRuns(runs),
		Curve:  WPMCurve(runs, cfg.CurveWindow),
	}, nil
}
