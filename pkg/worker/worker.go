package worker

import (
	"sync/atomic"

	"github.com/hbomb79/mediaprobe/pkg/logger"
)

var workerLogger = logger.Get("Worker")

type (
	WorkerWakeupChan chan int
	WorkerStatus     int32

	// WorkerTask is the function executed by a worker each time it
	// is awake. The boolean return indicates whether any work was
	// performed; a worker that finds no work goes back to sleep until
	// it is woken by the pool.
	WorkerTask func(Worker) (bool, error)
)

const (
	Sleeping WorkerStatus = iota
	Working
	Finished
)

type Worker interface {
	Start()
	Status() WorkerStatus
	WakeupChan() WorkerWakeupChan
	Label() string
	Sleep() bool
	Close()
}

type taskWorker struct {
	label         string
	task          WorkerTask
	wakeupChan    WorkerWakeupChan
	currentStatus atomic.Int32
}

func NewWorker(label string, task WorkerTask) *taskWorker {
	return &taskWorker{
		label:      label,
		task:       task,
		wakeupChan: make(WorkerWakeupChan, 1),
	}
}

// Start runs the workers task in a loop. Whenever the task reports
// it did no work the worker sleeps; the loop ends once the wakeup
// channel has been closed.
func (worker *taskWorker) Start() {
	workerLogger.Emit(logger.NEW, "Starting worker with label %v\n", worker.label)
	worker.setStatus(Working)
	for {
		didWork, err := worker.task(worker)
		if err != nil {
			workerLogger.Emit(logger.ERROR, "Worker with label %v has reported an error(%T): %v\n", worker.label, err, err.Error())
		}

		if didWork {
			continue
		}

		if !worker.Sleep() {
			break
		}
	}

	worker.setStatus(Finished)
	workerLogger.Emit(logger.STOP, "Worker with label %v has stopped\n", worker.label)
}

// Status returns the current status of this worker
func (worker *taskWorker) Status() WorkerStatus {
	return WorkerStatus(worker.currentStatus.Load())
}

func (worker *taskWorker) WakeupChan() WorkerWakeupChan {
	return worker.wakeupChan
}

// Close closes the Worker by closing the WakeChan.
// Note that this does not interupt currently running
// tasks.
func (worker *taskWorker) Close() {
	close(worker.wakeupChan)
}

// Label returns the label for this worker
func (worker *taskWorker) Label() string {
	return worker.label
}

// Sleep puts a worker to sleep until it's wakeupChan is
// signalled from another goroutine. Returns a boolean that
// is 'false' if the wakeup channel was closed - indicating
// the worker should quit.
func (worker *taskWorker) Sleep() (isAlive bool) {
	worker.setStatus(Sleeping)

	if _, isAlive = <-worker.wakeupChan; isAlive {
		worker.setStatus(Working)
	} else {
		workerLogger.Emit(logger.STOP, "Wakeup channel for worker '%v' has been closed - worker is exiting\n", worker.label)
		worker.setStatus(Finished)
	}

	return isAlive
}

func (worker *taskWorker) setStatus(status WorkerStatus) {
	worker.currentStatus.Store(int32(status))
}
