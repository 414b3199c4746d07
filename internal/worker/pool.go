// Package worker provides background processing for catalog cache
// writebacks.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

const putTimeout = 5 * time.Second

// Job carries one track to persist into the metadata cache.
type Job struct {
	Track domain.TrackMetadata
}

// Pool writes fetched track metadata into the cache off the request path,
// so a slow disk never delays a resolution call.
type Pool struct {
	cache   ports.TrackCache
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
}

// NewPool creates a writeback pool with the given worker count and queue
// size.
func NewPool(cache ports.TrackCache, workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{cache: cache, workers: workers, jobs: make(chan Job, queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight writebacks to drain.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a writeback without blocking; when the queue is full the
// job is dropped, since the cache is an optimization, not a record.
func (p *Pool) Submit(job Job) {
	select {
	case p.jobs <- job:
	default:
		log.Printf("WARN worker: dropping cache writeback for %s", job.Track.ID)
	}
}

func (p *Pool) processJob(job Job) {
	if job.Track.ID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	if err := p.cache.Put(ctx, job.Track); err != nil {
		log.Printf("WARN worker: failed to cache track %s: %v", job.Track.ID, err)
	}
}
