package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/content/fixtures"
	"github.com/fyrsmithlabs/contentgate/internal/logging"
)

func batchRecords(n int) []*content.Record {
	records := make([]*content.Record, 0, n)
	for i := 0; i < n; i++ {
		rec := fixtures.Records()[i%3]
		rec.ID = fmt.Sprintf("%s-%02d", rec.ID, i)
		if i%4 == 3 {
			rec.Fields["ai_prompt"] = content.Str("prompt")
		}
		records = append(records, rec)
	}
	return records
}

func TestValidateBatch(t *testing.T) {
	tl := logging.NewTestLogger()
	p := newPipeline(t, WithLogger(tl.Logger))
	records := batchRecords(12)

	res, err := p.ValidateBatch(context.Background(), records, nil, LifecycleOptions{}, 3)
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)

	require.Len(t, res.Grades, len(records))
	for i, g := range res.Grades {
		require.NotNil(t, g, i)
		assert.Equal(t, records[i].ID, g.RecordID, "grades keep input order")
	}

	summary := res.Summary()
	assert.Equal(t, 12, summary.Total)
	assert.Equal(t, 12, summary.Graded)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, 9, summary.Passed)
	assert.Equal(t, 3, summary.Issues[content.SeverityCritical])
	assert.Equal(t, []string{"aluminum-03", "aluminum-oxide-07", "rust-11"}, summary.Critical)
	assert.False(t, res.Passed())

	tl.AssertLogged(t, zapcore.InfoLevel, "batch completed")
	tl.AssertField(t, "batch completed", "run.id", res.RunID)
	tl.AssertField(t, "record graded", "run.id", res.RunID)
}

func TestValidateBatch_MatchesSequential(t *testing.T) {
	p := newPipeline(t)
	records := batchRecords(9)

	res, err := p.ValidateBatch(context.Background(), records, nil, LifecycleOptions{AutoFix: true}, 4)
	require.NoError(t, err)

	for i, rec := range records {
		want := validate(t, p, rec, LifecycleOptions{AutoFix: true})
		assert.Equal(t, want, res.Grades[i], rec.ID)
	}
}

func TestValidateBatch_AllPass(t *testing.T) {
	p := newPipeline(t)
	res, err := p.ValidateBatch(context.Background(), fixtures.Records(), nil, LifecycleOptions{}, 0)
	require.NoError(t, err)
	assert.True(t, res.Passed())
	assert.Empty(t, res.Summary().Critical)
}

func TestValidateBatch_Cancelled(t *testing.T) {
	tl := logging.NewTestLogger()
	p := newPipeline(t, WithLogger(tl.Logger))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.ValidateBatch(ctx, batchRecords(5), nil, LifecycleOptions{}, 2)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	summary := res.Summary()
	assert.Equal(t, 5, summary.Total)
	assert.Zero(t, summary.Graded)
	assert.False(t, res.Passed())
	tl.AssertLogged(t, zapcore.WarnLevel, "batch interrupted")
}

func TestValidateBatch_CancelBetweenRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	graded := 0
	p := newPipeline(t, WithProgress(func(pp PhaseProgress) {
		if pp.State != StateAggregated {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		graded++
		if graded == 2 {
			cancel()
		}
	}))

	res, err := p.ValidateBatch(ctx, batchRecords(10), nil, LifecycleOptions{}, 1)
	require.ErrorIs(t, err, context.Canceled)

	complete := 0
	for _, g := range res.Grades {
		if g != nil {
			complete++
			assert.Len(t, g.Results, 3, "started records are graded in full")
		}
	}
	assert.Equal(t, 2, complete)
}

func TestValidateBatch_InvalidRecord(t *testing.T) {
	p := newPipeline(t)
	records := fixtures.Records()
	records[1] = nil

	_, err := p.ValidateBatch(context.Background(), records, nil, LifecycleOptions{}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestBatchSummary_Empty(t *testing.T) {
	res := &BatchResult{}
	s := res.Summary()
	assert.Zero(t, s.Total)
	assert.True(t, res.Passed())
}
