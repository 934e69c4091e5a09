package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logModel "hajri_backend/internals/features/attendance/recompute/model"
)

// fakeRun mencatat pemanggilan dan bisa ditahan lewat gate.
type fakeRun struct {
	mu       sync.Mutex
	calls    []Job
	active   map[uuid.UUID]int
	overlaps int32
	gate     chan struct{}
	started  chan Job
	fail     map[uuid.UUID]bool
}

func newFakeRun() *fakeRun {
	return &fakeRun{
		active:  map[uuid.UUID]int{},
		started: make(chan Job, 64),
		fail:    map[uuid.UUID]bool{},
	}
}

func (f *fakeRun) run(ctx context.Context, id uuid.UUID, trigger logModel.Trigger, triggerID string) (int, logModel.ComputeStatus, error) {
	job := Job{StudentID: id, Trigger: trigger, TriggerID: triggerID}
	f.mu.Lock()
	f.calls = append(f.calls, job)
	f.active[id]++
	if f.active[id] > 1 {
		atomic.AddInt32(&f.overlaps, 1)
	}
	gate := f.gate
	fail := f.fail[id]
	f.mu.Unlock()

	f.started <- job
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	f.active[id]--
	f.mu.Unlock()
	if fail {
		return 0, logModel.ComputeFailed, errors.New("store down")
	}
	return 2, logModel.ComputeSuccess, nil
}

func (f *fakeRun) jobs() []Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Job(nil), f.calls...)
}

func waitStarted(t *testing.T, f *fakeRun) Job {
	t.Helper()
	select {
	case j := <-f.started:
		return j
	case <-time.After(2 * time.Second):
		t.Fatal("run not started")
		return Job{}
	}
}

func TestDispatcher_CoalescesPendingTriggers(t *testing.T) {
	f := newFakeRun()
	f.gate = make(chan struct{})
	m := NewMetrics(prometheus.NewRegistry())
	d := NewDispatcher(f.run, 2, m, log.NewNopLogger())
	d.Start()

	student := uuid.New()
	require.True(t, d.Trigger(Job{StudentID: student, Trigger: logModel.TriggerManualEntry, TriggerID: "e1"}))
	first := waitStarted(t, f)
	assert.Equal(t, "e1", first.TriggerID)

	// selama run pertama berjalan, dua trigger digabung jadi satu run
	require.True(t, d.Trigger(Job{StudentID: student, Trigger: logModel.TriggerManualEntry, TriggerID: "e2"}))
	require.True(t, d.Trigger(Job{StudentID: student, Trigger: logModel.TriggerSnapshotConfirm, TriggerID: "s1"}))
	close(f.gate)

	second := waitStarted(t, f)
	assert.Equal(t, logModel.TriggerSnapshotConfirm, second.Trigger)
	assert.Equal(t, "s1", second.TriggerID)

	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, f.jobs(), 2)
	assert.Zero(t, atomic.LoadInt32(&f.overlaps))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Coalesced))
}

func TestDispatcher_NoOverlapPerStudent(t *testing.T) {
	f := newFakeRun()
	d := NewDispatcher(f.run, 4, nil, log.NewNopLogger())
	d.Start()

	students := []uuid.UUID{uuid.New(), uuid.New()}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Do(context.Background(), Job{StudentID: students[i%2], Trigger: logModel.TriggerForceRecompute})
		}(i)
	}
	wg.Wait()
	require.NoError(t, d.Close(context.Background()))
	assert.Zero(t, atomic.LoadInt32(&f.overlaps))
	assert.NotEmpty(t, f.jobs())
}

func TestDispatcher_DoReturnsResult(t *testing.T) {
	f := newFakeRun()
	bad := uuid.New()
	f.fail[bad] = true
	d := NewDispatcher(f.run, 1, nil, log.NewNopLogger())
	d.Start()
	defer d.Close(context.Background())

	res := d.Do(context.Background(), Job{StudentID: uuid.New(), Trigger: logModel.TriggerForceRecompute})
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.SubjectsUpdated)
	assert.Equal(t, logModel.ComputeSuccess, res.Status)

	res = d.Do(context.Background(), Job{StudentID: bad, Trigger: logModel.TriggerForceRecompute})
	require.Error(t, res.Err)
	assert.Equal(t, logModel.ComputeFailed, res.Status)
}

func TestDispatcher_DoHonoursContext(t *testing.T) {
	f := newFakeRun()
	f.gate = make(chan struct{})
	d := NewDispatcher(f.run, 1, nil, log.NewNopLogger())
	d.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := d.Do(ctx, Job{StudentID: uuid.New(), Trigger: logModel.TriggerForceRecompute})
	assert.True(t, errors.Is(res.Err, context.DeadlineExceeded))

	close(f.gate)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_CloseDrainsAndRejects(t *testing.T) {
	f := newFakeRun()
	d := NewDispatcher(f.run, 1, nil, log.NewNopLogger())
	d.Start()

	for i := 0; i < 5; i++ {
		require.True(t, d.Trigger(Job{StudentID: uuid.New(), Trigger: logModel.TriggerCalendarUpdate}))
	}
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, f.jobs(), 5)

	assert.False(t, d.Trigger(Job{StudentID: uuid.New(), Trigger: logModel.TriggerManualEntry}))
	res := d.Do(context.Background(), Job{StudentID: uuid.New()})
	assert.ErrorIs(t, res.Err, ErrDispatcherClosed)
}

func TestDispatcher_RecomputeStudents(t *testing.T) {
	f := newFakeRun()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	f.fail[ids[1]] = true
	d := NewDispatcher(f.run, 2, nil, log.NewNopLogger())
	d.Start()
	defer d.Close(context.Background())

	out, err := d.RecomputeStudents(context.Background(), ids, logModel.TriggerCalendarUpdate, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Students: 3, Succeeded: 2, Failed: 1, Subjects: 4}, out)

	for _, j := range f.jobs() {
		assert.Equal(t, "2024-25", j.TriggerID)
	}
}
