package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DH-11027/paradise/pkg/logger"
)

type fakeJob struct {
	name string
	ran  chan struct{}
	err  error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return "0 0 0 1 1 *" }
func (j *fakeJob) Run(ctx context.Context) error {
	select {
	case j.ran <- struct{}{}:
	default:
	}
	return j.err
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(logger.Nop())
	job := &fakeJob{name: "refresh", ran: make(chan struct{}, 1)}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job))
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.Nop())
	bad := &badScheduleJob{}

	assert.Error(t, s.AddJob(bad))
}

type badScheduleJob struct{}

func (j *badScheduleJob) Name() string                  { return "bad" }
func (j *badScheduleJob) Schedule() string              { return "not a cron expr" }
func (j *badScheduleJob) Run(ctx context.Context) error { return nil }

func TestRunJobImmediately(t *testing.T) {
	s := New(logger.Nop())
	job := &fakeJob{name: "refresh", ran: make(chan struct{}, 1)}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("refresh"))

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	assert.Error(t, s.RunJob("missing"))
}

func TestJobHistoryKeepsLastHundred(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "refresh", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.NotNil(t, h.Latest())
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.05)
}
