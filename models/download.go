package models

import (
	"sync"
	"sync/atomic"
)

// Transport fetches one model's files into the local cache, reporting
// progress in [0, 1]. Re-invoking for a partially fetched model continues
// rather than restarting.
type Transport interface {
	Fetch(modelID string, progress func(float64)) (string, error)
}

type (
	ProgressFunc func(modelID string, progress float64)
	CompleteFunc func(modelID string, ok bool)
)

// Downloader runs at most one model fetch at a time. Starting a new job
// cancels the previous one; cancellation is advisory — the transport call is
// not interrupted, the abandoned job just reports failure and stays silent.
//
// Every started job invokes the completion callback exactly once, even on
// cancellation or a panicking transport. That guarantee is what keeps
// pending-switch bookkeeping from wedging.
type Downloader struct {
	transport  Transport
	onProgress ProgressFunc
	onComplete CompleteFunc

	mu      sync.Mutex
	current *job
}

// job's cancel flag belongs to this job alone; a late cancel can never
// affect a newer job.
type job struct {
	modelID   string
	cancelled atomic.Bool
}

func NewDownloader(t Transport, onProgress ProgressFunc, onComplete CompleteFunc) *Downloader {
	return &Downloader{
		transport:  t,
		onProgress: onProgress,
		onComplete: onComplete,
	}
}

// Start begins downloading modelID, first abandoning any in-flight job.
// It means "stop caring about the old job", not "halt its I/O".
func (d *Downloader) Start(modelID string) {
	j := &job{modelID: modelID}

	d.mu.Lock()
	if d.current != nil {
		d.current.cancelled.Store(true)
	}
	d.current = j
	d.mu.Unlock()

	go d.run(j)
}

// Cancel abandons the in-flight job, if any.
func (d *Downloader) Cancel() {
	d.mu.Lock()
	if d.current != nil {
		d.current.cancelled.Store(true)
	}
	d.mu.Unlock()
}

// Current returns the model id of the live job, if one exists.
func (d *Downloader) Current() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return "", false
	}
	return d.current.modelID, true
}

func (d *Downloader) run(j *job) {
	var ok bool
	defer func() {
		// A panicking transport still completes the job, as a failure.
		if r := recover(); r != nil {
			ok = false
		}
		d.mu.Lock()
		if d.current == j {
			d.current = nil
		}
		d.mu.Unlock()
		d.onComplete(j.modelID, ok && !j.cancelled.Load())
	}()

	last := 0.0
	_, err := d.transport.Fetch(j.modelID, func(frac float64) {
		if j.cancelled.Load() {
			return
		}
		// Transports may report out of order around a resume; clamp so
		// observers see a non-decreasing sequence.
		if frac < last {
			return
		}
		last = frac
		d.onProgress(j.modelID, frac)
	})
	ok = err == nil
}
