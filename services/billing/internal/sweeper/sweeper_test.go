package sweeper

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/pkg/logging"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) ExpireDue(context.Context) (int, error) {
	j.calls.Add(1)
	return 1, j.err
}

func TestNew_RejectsBadSpec(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "every ten minutes", &countingJob{}, logging.NewWithWriter(io.Discard, "error"))
	assert.Error(t, err)
}

func TestRun_CallsJob(t *testing.T) {
	t.Parallel()

	job := &countingJob{}
	s, err := New(context.Background(), "@every 10m", job, logging.NewWithWriter(io.Discard, "error"))
	require.NoError(t, err)

	s.Run()
	job.err = errors.New("db down")
	s.Run()
	assert.EqualValues(t, 2, job.calls.Load())

	s.Start()
	s.Stop()
}
