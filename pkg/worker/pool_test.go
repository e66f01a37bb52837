package worker_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/hbomb79/mediaprobe/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Pool_WorkersSleepUntilWoken(t *testing.T) {
	var pending atomic.Int32
	var processed atomic.Int32
	task := func(w worker.Worker) (bool, error) {
		if pending.Load() <= 0 {
			return false, nil
		}
		if pending.Add(-1) < 0 {
			pending.Add(1)
			return false, nil
		}

		processed.Add(1)
		return true, nil
	}

	pool := worker.NewWorkerPool()
	require.NoError(t, pool.PushWorker(worker.NewWorker("a", task), worker.NewWorker("b", task)))
	require.NoError(t, pool.Start())
	t.Cleanup(pool.Close)

	assert.Eventually(t, func() bool { return processed.Load() == 0 }, time.Second, 10*time.Millisecond)

	pending.Store(5)
	require.NoError(t, pool.WakeupWorkers())

	assert.Eventually(t, func() bool { return processed.Load() == 5 }, 2*time.Second, 10*time.Millisecond)
}

func Test_Pool_LifecycleErrors(t *testing.T) {
	pool := worker.NewWorkerPool()
	assert.Error(t, pool.WakeupWorkers(), "waking an unstarted pool should fail")

	noop := func(worker.Worker) (bool, error) { return false, nil }
	require.NoError(t, pool.PushWorker(worker.NewWorker("noop", noop)))
	require.NoError(t, pool.Start())

	assert.Error(t, pool.Start(), "starting twice should fail")
	assert.Error(t, pool.PushWorker(worker.NewWorker("late", noop)), "pushing to a started pool should fail")
	assert.Equal(t, 1, pool.Size())

	pool.Close()
	assert.Error(t, pool.WakeupWorkers(), "waking a closed pool should fail")
}

func Test_Worker_ExitsWhenClosed(t *testing.T) {
	w := worker.NewWorker("closer", func(worker.Worker) (bool, error) { return false, nil })

	done := make(chan struct{})
	go func() {
		w.Start()
		close(done)
	}()

	assert.Eventually(t, func() bool { return w.Status() == worker.Sleeping }, time.Second, 10*time.Millisecond)
	w.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after its wakeup channel was closed")
	}
	assert.Equal(t, worker.Finished, w.Status())
}
