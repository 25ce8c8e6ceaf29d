package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/config"
)

func testConfig(t *testing.T) config.Tasks {
	t.Helper()
	return config.Tasks{
		Enabled:         true,
		Workers:         1,
		ReleaseAfter:    time.Minute,
		CleanupInterval: time.Hour,
		DatabasePath:    filepath.Join(t.TempDir(), "tasks", "test-tasks.db"),
	}
}

func TestNewClient(t *testing.T) {
	cfg := testConfig(t)

	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(cfg.DatabasePath)
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client, err := NewClient(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStopWithoutStart(t *testing.T) {
	client, err := NewClient(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.Stop(context.Background()))
}

type fakeBackupper struct {
	users chan uint
	all   chan struct{}
	err   error
}

func (b *fakeBackupper) BackupUser(_ context.Context, userID uint) (string, error) {
	b.users <- userID
	return "file:///tmp/x.json", b.err
}

func (b *fakeBackupper) BackupAll(context.Context) (int, error) {
	b.all <- struct{}{}
	return 2, b.err
}

func TestBackupTaskRunsThroughQueue(t *testing.T) {
	client, err := NewClient(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	backupper := &fakeBackupper{users: make(chan uint, 1), all: make(chan struct{}, 1)}
	client.Register(NewBackupQueue(backupper, zap.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(BackupTask{UserID: 4})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case userID := <-backupper.users:
		assert.Equal(t, uint(4), userID)
	case <-time.After(5 * time.Second):
		t.Fatal("backup task was not executed within timeout")
	}

	_, err = client.Enqueue(BackupTask{})
	require.NoError(t, err)
	select {
	case <-backupper.all:
	case <-time.After(5 * time.Second):
		t.Fatal("full backup task was not executed within timeout")
	}
}

func TestClientStatus(t *testing.T) {
	client, err := NewClient(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer client.Close()
	client.Register(NewBackupQueue(&fakeBackupper{}, zap.NewNop()))

	id, err := client.Enqueue(BackupTask{UserID: 1})
	require.NoError(t, err)

	status, err := client.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "pending", StatusString(status))
}

func TestBackupProcessor(t *testing.T) {
	ctx := context.Background()

	err := BackupProcessor(nil, zap.NewNop())(ctx, BackupTask{})
	assert.Error(t, err)

	failing := &fakeBackupper{users: make(chan uint, 1), all: make(chan struct{}, 1), err: errors.New("disk full")}
	err = BackupProcessor(failing, zap.NewNop())(ctx, BackupTask{UserID: 9})
	assert.ErrorContains(t, err, "disk full")
	err = BackupProcessor(failing, zap.NewNop())(ctx, BackupTask{})
	assert.ErrorContains(t, err, "2 written")
}

func TestTaskConfigs(t *testing.T) {
	backup := BackupTask{}.Config()
	assert.Equal(t, "backup_snapshots", backup.Name)
	assert.Equal(t, 3, backup.MaxAttempts)

	cleanup := CleanupAuditEventsTask{}.Config()
	assert.Equal(t, "cleanup_audit_events", cleanup.Name)
	assert.Equal(t, 2*time.Minute, cleanup.Timeout)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusString(backlite.TaskStatusPending))
	assert.Equal(t, "running", StatusString(backlite.TaskStatusRunning))
	assert.Equal(t, "success", StatusString(backlite.TaskStatusSuccess))
	assert.Equal(t, "failure", StatusString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", StatusString(backlite.TaskStatusNotFound))
}
