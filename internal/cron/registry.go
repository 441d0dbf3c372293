package cron

import (
	"context"
	"time"
)

// Job is a unit of scheduled maintenance run by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type entry struct {
	job   Job
	every time.Duration
}

// Registry holds the jobs and how often each one is due. A zero cadence means
// the job runs on every service tick.
type Registry struct {
	entries []entry
}

func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		registry.Schedule(job, 0)
	}
	return registry
}

// Schedule adds job with its own cadence.
func (r *Registry) Schedule(job Job, every time.Duration) {
	if job == nil {
		return
	}
	if every < 0 {
		every = 0
	}
	r.entries = append(r.entries, entry{job: job, every: every})
}

// Jobs returns the registered jobs in registration order.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, 0, len(r.entries))
	for _, e := range r.entries {
		jobs = append(jobs, e.job)
	}
	return jobs
}

// tick is the shortest cadence among the entries, capped at fallback.
func (r *Registry) tick(fallback time.Duration) time.Duration {
	tick := fallback
	for _, e := range r.entries {
		if e.every > 0 && e.every < tick {
			tick = e.every
		}
	}
	return tick
}

func (r *Registry) due(lastRun map[string]time.Time, now time.Time) []Job {
	var due []Job
	for _, e := range r.entries {
		last, ran := lastRun[e.job.Name()]
		if !ran || e.every == 0 || now.Sub(last) >= e.every {
			due = append(due, e.job)
		}
	}
	return due
}
