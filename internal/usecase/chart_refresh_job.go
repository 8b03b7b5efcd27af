package usecase

import (
	"context"
	"fmt"

	applogger "CryptoBooster/pkg/logger"
	"CryptoBooster/pkg/queue"
)

// ChartRefreshType is the queue message type for chart refresh requests.
const ChartRefreshType = "chart.refresh"

// ChartRefreshPayload identifies the asset whose cached series should be
// rebuilt.
type ChartRefreshPayload struct {
	CoinID string `json:"coin_id"`
}

// ChartRefreshJob rebuilds a cached chart bundle in the background so HTTP
// requests stay on the cache hit path.
type ChartRefreshJob struct {
	charts *ChartSeriesUseCase
	logger *applogger.Logger
}

func NewChartRefreshJob(charts *ChartSeriesUseCase, lgr *applogger.Logger) *ChartRefreshJob {
	return &ChartRefreshJob{charts: charts, logger: lgr}
}

func (j *ChartRefreshJob) Name() string { return "chart_refresh" }
func (j *ChartRefreshJob) Type() string { return ChartRefreshType }

func (j *ChartRefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ChartRefreshPayload](payload)
	if err != nil {
		return fmt.Errorf("chart refresh payload: %w", err)
	}
	if p.CoinID == "" {
		return fmt.Errorf("chart refresh payload missing coin_id")
	}

	if err := j.charts.Invalidate(ctx, p.CoinID); err != nil {
		return fmt.Errorf("invalidate %s: %w", p.CoinID, err)
	}
	if _, err := j.charts.GenerateChartSeries(ctx, p.CoinID); err != nil {
		return fmt.Errorf("rebuild %s: %w", p.CoinID, err)
	}
	if j.logger != nil {
		j.logger.Debug("chart series refreshed", applogger.String("coin", p.CoinID))
	}
	return nil
}

var _ queue.Job = (*ChartRefreshJob)(nil)
