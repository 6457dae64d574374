package util_test

import (
	"sync"
	"testing"

	"github.com/cms-egamma/egdqm/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestPseudoWorkerPool(t *testing.T) {
	p := util.NewPseudoWorkerPool()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, p.Submit(func() { order = append(order, i) }))
	}

	require.Equal(t, []int{0, 1, 2}, order)

	p.Release()
	require.ErrorIs(t, p.Submit(func() {}), util.ErrPoolClosed)
}

func TestNewWorkerPool(t *testing.T) {
	p, err := util.NewWorkerPool(4)
	require.NoError(t, err)
	defer p.Release()

	var (
		wg  sync.WaitGroup
		cnt atomic.Int64
	)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			cnt.Inc()
		}))
	}

	wg.Wait()
	require.EqualValues(t, 100, cnt.Load())

	p, err = util.NewWorkerPool(1)
	require.NoError(t, err)
	require.IsType(t, util.NewPseudoWorkerPool(), p)
}
