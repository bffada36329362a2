package harvest_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/UnknownOlympus/iris/internal/harvest"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/internal/queue"
	"github.com/UnknownOlympus/iris/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testBounds = models.NewBounds(models.Coordinates{Latitude: 33.01, Longitude: -96.85}, 18, models.DefaultViewport)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func drain(t *testing.T, q *queue.Queue[models.Address]) []models.Address {
	t.Helper()
	require.True(t, q.Completed(), "queue must be completed when Harvest returns")

	var items []models.Address
	for item := range q.Drain(t.Context()) {
		items = append(items, item)
	}

	return items
}

func TestHarvester_Harvest(t *testing.T) {
	ctx := t.Context()
	logger := newTestLogger()

	t.Run("publishes single addresses in target order", func(t *testing.T) {
		dir := mocks.NewDirectory(t)
		appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		harvester := harvest.NewHarvester(logger, dir, appMetrics, 0)
		q := queue.New[models.Address]()

		dir.On("ListTargets", ctx, testBounds, harvest.DefaultTargetLimit).Return([]models.Target{
			{ID: 10, Status: 1, Count: 1},
			{ID: 11, Status: 7, Count: 1},
			{ID: 12, Status: 1, Count: 1},
		}, nil).Once()
		dir.On("AddressDetails", ctx, 10).Return([]models.Address{{ID: 100, Line1: "1 Elm St"}}, nil).Once()
		dir.On("AddressDetails", ctx, 12).Return([]models.Address{{ID: 120, Line1: "2 Oak St"}}, nil).Once()

		result, err := harvester.Harvest(ctx, testBounds, q, nil)

		require.NoError(t, err)
		assert.Equal(t, harvest.Result{Fetched: 3, Eligible: 2, Published: 2}, result)
		items := drain(t, q)
		require.Len(t, items, 2)
		assert.Equal(t, 100, items[0].ID)
		assert.Equal(t, 120, items[1].ID)
		assert.InDelta(t, 2, testutil.ToFloat64(appMetrics.AddressesPublished), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.Targets.WithLabelValues("filtered")), 0)
	})

	t.Run("skips zero and multi-unit results", func(t *testing.T) {
		dir := mocks.NewDirectory(t)
		appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		harvester := harvest.NewHarvester(logger, dir, appMetrics, 50)
		q := queue.New[models.Address]()

		dir.On("ListTargets", ctx, testBounds, 50).Return([]models.Target{
			{ID: 1, Status: 1, Count: 1},
			{ID: 2, Status: 1, Count: 1},
			{ID: 3, Status: 1, Count: 1},
		}, nil).Once()
		dir.On("AddressDetails", ctx, 1).Return([]models.Address{}, nil).Once()
		dir.On("AddressDetails", ctx, 2).Return([]models.Address{{ID: 20}, {ID: 21}}, nil).Once()
		dir.On("AddressDetails", ctx, 3).Return([]models.Address{{ID: 30}}, nil).Once()

		result, err := harvester.Harvest(ctx, testBounds, q, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Published)
		items := drain(t, q)
		require.Len(t, items, 1)
		assert.Equal(t, 30, items[0].ID)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.AddressSkips.WithLabelValues("no_address")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.AddressSkips.WithLabelValues("multi_unit")), 0)
	})

	t.Run("detail fetch failure skips only that target", func(t *testing.T) {
		dir := mocks.NewDirectory(t)
		appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		harvester := harvest.NewHarvester(logger, dir, appMetrics, 0)
		q := queue.New[models.Address]()

		dir.On("ListTargets", ctx, testBounds, harvest.DefaultTargetLimit).Return([]models.Target{
			{ID: 1, Status: 1, Count: 1},
			{ID: 2, Status: 1, Count: 1},
		}, nil).Once()
		dir.On("AddressDetails", ctx, 1).Return(nil, assert.AnError).Once()
		dir.On("AddressDetails", ctx, 2).Return([]models.Address{{ID: 200}}, nil).Once()

		result, err := harvester.Harvest(ctx, testBounds, q, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Published)
		assert.Len(t, drain(t, q), 1)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.AddressSkips.WithLabelValues("fetch_error")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.APIErrors.WithLabelValues("addresses")), 0)
	})

	t.Run("excluded addresses are not published again", func(t *testing.T) {
		dir := mocks.NewDirectory(t)
		harvester := harvest.NewHarvester(logger, dir, metrics.NewMetrics(prometheus.NewRegistry()), 0)
		q := queue.New[models.Address]()

		dir.On("ListTargets", ctx, testBounds, harvest.DefaultTargetLimit).Return([]models.Target{
			{ID: 1, Status: 1, Count: 1},
		}, nil).Once()
		dir.On("AddressDetails", ctx, 1).Return([]models.Address{{ID: 100}}, nil).Once()

		result, err := harvester.Harvest(ctx, testBounds, q, map[int]struct{}{100: {}})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Published)
		assert.Empty(t, drain(t, q))
	})

	t.Run("no eligible targets", func(t *testing.T) {
		dir := mocks.NewDirectory(t)
		harvester := harvest.NewHarvester(logger, dir, metrics.NewMetrics(prometheus.NewRegistry()), 0)
		q := queue.New[models.Address]()

		dir.On("ListTargets", ctx, testBounds, harvest.DefaultTargetLimit).Return([]models.Target{
			{ID: 1, Status: 3, Count: 1},
		}, nil).Once()

		result, err := harvester.Harvest(ctx, testBounds, q, nil)

		require.NoError(t, err)
		assert.Equal(t, harvest.Result{Fetched: 1}, result)
		assert.Empty(t, drain(t, q))
		dir.AssertNotCalled(t, "AddressDetails", mock.Anything, mock.Anything)
	})

	t.Run("list failure still completes the queue", func(t *testing.T) {
		dir := mocks.NewDirectory(t)
		appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		harvester := harvest.NewHarvester(logger, dir, appMetrics, 0)
		q := queue.New[models.Address]()

		dir.On("ListTargets", ctx, testBounds, harvest.DefaultTargetLimit).Return(nil, assert.AnError).Once()

		result, err := harvester.Harvest(ctx, testBounds, q, nil)

		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, harvest.Result{}, result)
		assert.Empty(t, drain(t, q))
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.APIErrors.WithLabelValues("targets")), 0)
	})

	t.Run("cancelled context stops between targets", func(t *testing.T) {
		dir := mocks.NewDirectory(t)
		harvester := harvest.NewHarvester(logger, dir, metrics.NewMetrics(prometheus.NewRegistry()), 0)
		q := queue.New[models.Address]()
		cctx, cancel := context.WithCancel(ctx)

		dir.On("ListTargets", cctx, testBounds, harvest.DefaultTargetLimit).Return([]models.Target{
			{ID: 1, Status: 1, Count: 1},
			{ID: 2, Status: 1, Count: 1},
		}, nil).Once()
		dir.On("AddressDetails", cctx, 1).Run(func(_ mock.Arguments) { cancel() }).
			Return([]models.Address{{ID: 100}}, nil).Once()

		result, err := harvester.Harvest(cctx, testBounds, q, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, result.Published)
		assert.True(t, q.Completed())
		assert.Equal(t, 1, q.Len())
	})
}
