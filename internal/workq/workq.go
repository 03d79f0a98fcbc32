// Package workq implements the batched job queue that feeds a worker
// goroutine.
package workq

import "deedles.dev/xsync/cq"

// A Job is one unit of work to run on the worker.
type Job func()

type Queue = cq.BulkQueue[Job, *Batch]

func New() *Queue {
	return cq.New(func(v []Job) *Batch {
		return &Batch{
			jobs: v,
		}
	})
}

// Batch represents a series of jobs drained from a Queue together.
type Batch struct {
	jobs []Job
}

// Run executes the batch's jobs in submission order.
func (b *Batch) Run() {
	for _, job := range b.jobs {
		job()
	}
	b.jobs = nil
}
