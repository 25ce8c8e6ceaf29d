package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/tasks"
)

type fakeQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
	err   error
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return "task-1", nil
}

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 3 * * *", true},
		{"*/15 * * * *", true},
		{"0 4 * * 1-5", true},
		{"", false},
		{"0 3 * *", false},
		{"0 0 3 * * *", false}, // seconds field not accepted
		{"61 * * * *", false},
	}
	for _, tt := range tests {
		err := ValidateCronSchedule(tt.schedule)
		if tt.valid {
			assert.NoError(t, err, tt.schedule)
		} else {
			assert.Error(t, err, tt.schedule)
		}
	}
}

func TestScheduler_AddAndRunNow(t *testing.T) {
	queue := &fakeQueue{}
	s := New(queue, zap.NewNop())

	require.NoError(t, s.Add(JobBackup, "0 3 * * *", tasks.BackupTask{}))
	require.NoError(t, s.Add(JobAuditCleanup, AuditCleanupSchedule, tasks.CleanupAuditEventsTask{RetentionDays: 14}))
	assert.Equal(t, []string{JobAuditCleanup, JobBackup}, s.Jobs())

	id, err := s.RunNow(JobAuditCleanup)
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, tasks.CleanupAuditEventsTask{RetentionDays: 14}, queue.tasks[0])

	_, err = s.RunNow("unknown")
	assert.Error(t, err)
}

func TestScheduler_AddRejectsInvalidSchedule(t *testing.T) {
	s := New(&fakeQueue{}, zap.NewNop())
	err := s.Add(JobBackup, "every day", tasks.BackupTask{})
	assert.ErrorContains(t, err, "invalid cron schedule")
	assert.Empty(t, s.Jobs())
}

func TestScheduler_AddReplacesJob(t *testing.T) {
	queue := &fakeQueue{}
	s := New(queue, zap.NewNop())

	require.NoError(t, s.Add(JobBackup, "0 3 * * *", tasks.BackupTask{}))
	require.NoError(t, s.Add(JobBackup, "0 5 * * *", tasks.BackupTask{UserID: 2}))
	assert.Len(t, s.cron.Entries(), 1)

	_, err := s.RunNow(JobBackup)
	require.NoError(t, err)
	assert.Equal(t, tasks.BackupTask{UserID: 2}, queue.tasks[0])
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(&fakeQueue{}, zap.NewNop())
	require.NoError(t, s.Add(JobBackup, "0 3 * * *", tasks.BackupTask{}))

	assert.Nil(t, s.NextRun(JobBackup), "not running yet")

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	next := s.NextRun(JobBackup)
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.True(t, next.After(time.Now()))

	cancel()
	assert.Eventually(t, func() bool { return s.NextRun(JobBackup) == nil }, 2*time.Second, 10*time.Millisecond)

	s.Stop() // second stop is a no-op
}

func TestScheduler_EnqueueErrorIsLogged(t *testing.T) {
	queue := &fakeQueue{err: errors.New("queue closed")}
	s := New(queue, zap.NewNop())
	require.NoError(t, s.Add(JobBackup, "0 3 * * *", tasks.BackupTask{}))

	s.enqueue(JobBackup)
	assert.Empty(t, queue.tasks)
}
