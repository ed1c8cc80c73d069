package sweeper

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/Skotchmaster/tradefund/pkg/logging"
)

// Expirer is the job the sweeper runs on schedule.
type Expirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

type Sweeper struct {
	cron *cron.Cron
	job  Expirer
	log  *slog.Logger
	ctx  context.Context
}

// New schedules the expiry sweep with a standard cron spec or a descriptor such as "@every 10m".
func New(ctx context.Context, spec string, job Expirer, logger *slog.Logger) (*Sweeper, error) {
	cl := cronLogger{l: logger}
	s := &Sweeper{
		cron: cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		job:  job,
		log:  logger,
		ctx:  logging.IntoContext(ctx, logger),
	}
	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		return nil, err
	}
	return s, nil
}

// Run performs one sweep.
func (s *Sweeper) Run() {
	n, err := s.job.ExpireDue(s.ctx)
	if err != nil {
		s.log.Error("subscription_sweep_failed", "expired", n, "error", err)
		return
	}
	if n > 0 {
		s.log.Info("subscription_sweep_done", "expired", n)
	}
}

func (s *Sweeper) Start() { s.cron.Start() }

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
