package fileproc

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkers(t *testing.T) {
	assert.Equal(t, runtime.NumCPU()*DefaultWorkerMultiplier, Workers(0))
	assert.Equal(t, runtime.NumCPU()*DefaultWorkerMultiplier, Workers(-1))
	assert.Equal(t, 3, Workers(3))
}

func TestMapNPreservesOrder(t *testing.T) {
	items := []int{5, 1, 9, 3, 7, 2, 8, 4, 6, 0}

	out, errs := MapN(items, 4,
		func(i int) string { return "item" },
		func(i int) (int, error) { return i * 10, nil },
		nil,
	)

	require.Nil(t, errs)
	require.Len(t, out, len(items))
	for i, item := range items {
		assert.Equal(t, item*10, out[i], "results keep input order")
	}
}

func TestMapNSkipsFailedItems(t *testing.T) {
	items := []string{"a", "bad", "c"}

	out, errs := MapN(items, 2,
		func(s string) string { return s },
		func(s string) (string, error) {
			if s == "bad" {
				return "", errors.New("boom")
			}
			return s + "!", nil
		},
		nil,
	)

	assert.Equal(t, []string{"a!", "c!"}, out)
	require.True(t, errs.HasErrors())
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, "bad", errs.Errors[0].Path)
	assert.Contains(t, errs.Error(), "boom")
}

func TestMapNEmptyInput(t *testing.T) {
	out, errs := MapN(nil, 4,
		func(int) string { return "" },
		func(i int) (int, error) { return i, nil },
		nil,
	)
	assert.Nil(t, out)
	assert.Nil(t, errs)
	assert.False(t, errs.HasErrors(), "nil collection reports no errors")
}

func TestMapNProgress(t *testing.T) {
	var calls atomic.Int32
	items := []int{1, 2, 3, 4, 5}

	_, errs := MapN(items, 2,
		func(int) string { return "" },
		func(i int) (int, error) {
			if i%2 == 0 {
				return 0, errors.New("even")
			}
			return i, nil
		},
		func() { calls.Add(1) },
	)

	require.True(t, errs.HasErrors())
	assert.Equal(t, int32(len(items)), calls.Load(), "progress fires for failures too")
}

func TestMapNContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []int{1, 2, 3}
	out, errs := MapNContext(ctx, items, 1,
		func(i int) string { return "item" },
		func(i int) (int, error) { return i, nil },
		nil,
	)

	assert.Empty(t, out)
	require.True(t, errs.HasErrors())
	assert.Len(t, errs.Errors, len(items))
	assert.ErrorIs(t, errs.Errors[0].Err, context.Canceled)
}

func TestProcessingErrorsMessages(t *testing.T) {
	errs := &ProcessingErrors{}
	assert.Equal(t, "no errors", errs.Error())

	errs.Add("a.py", errors.New("parse failed"))
	assert.Equal(t, "a.py: parse failed", errs.Error())

	errs.Add("b.py", errors.New("read failed"))
	assert.Contains(t, errs.Error(), "2 files failed")
}
