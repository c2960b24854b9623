// Package scheduler fires the period-ready trigger on a cron. It
// only pulls the trigger; resolution itself is idempotent, so a
// duplicate or early fire costs nothing.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Trigger is the resolution entrypoint the scheduler drives.
type Trigger func(ctx context.Context) error

type Scheduler struct {
	cron *cron.Cron
}

// New builds a scheduler from a six-field cron spec (with seconds).
func New(spec string, trigger Trigger) (*Scheduler, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		if err := trigger(context.Background()); err != nil {
			log.Warn().Err(err).Msg("scheduled resolution failed")
		}
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns a context that closes when any
// in-flight run finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
