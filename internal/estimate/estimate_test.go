package estimate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pagekeeper/internal/entities"
)

type fakeSource struct {
	n   int
	err error
}

func (f fakeSource) Count(context.Context, int64, int64) (int, error) { return f.n, f.err }

type fakePages int64

func (f fakePages) CountPages(context.Context) (int64, error) { return int64(f), nil }

type fakeQueue map[entities.ImportStatus]int64

func (f fakeQueue) CountByStatus(_ context.Context, importType entities.ImportType, status entities.ImportStatus) (int64, error) {
	if importType != entities.ImportTypeHistory {
		return 0, nil
	}
	return f[status], nil
}

func TestCalculator_Estimate(t *testing.T) {
	// 10 worthy items, 3 records (2 pending, 1 success), 9 pages of which
	// 7 fully saved and 2 pending stubs.
	calc := NewCalculator(
		fakeSource{n: 10},
		fakePages(9),
		fakeQueue{entities.ImportStatusPending: 2, entities.ImportStatusSuccess: 1},
	)

	est, err := calc.Estimate(context.Background(), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, Estimate{Completed: 7, Remaining: 12}, est)
}

func TestCalculator_Estimate_Empty(t *testing.T) {
	calc := NewCalculator(fakeSource{}, fakePages(0), fakeQueue{})

	est, err := calc.Estimate(context.Background(), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, Estimate{}, est)
}

func TestCalculator_Estimate_NotClamped(t *testing.T) {
	calc := NewCalculator(fakeSource{}, fakePages(1), fakeQueue{entities.ImportStatusPending: 3})

	est, err := calc.Estimate(context.Background(), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), est.Completed)
	assert.Equal(t, int64(3), est.Remaining)
}

func TestCalculator_Estimate_SourceError(t *testing.T) {
	boom := errors.New("history unavailable")
	calc := NewCalculator(fakeSource{err: boom}, fakePages(0), fakeQueue{})

	_, err := calc.Estimate(context.Background(), 0, 1000)
	assert.ErrorIs(t, err, boom)
}
