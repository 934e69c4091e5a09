// file: internals/features/attendance/recompute/service/dispatcher.go
package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	logModel "hajri_backend/internals/features/attendance/recompute/model"
	"hajri_backend/internals/repository"
)

var ErrDispatcherClosed = errors.New("recompute dispatcher closed")

type Job struct {
	StudentID uuid.UUID
	Trigger   logModel.Trigger
	TriggerID string
}

type Result struct {
	SubjectsUpdated int
	Status          logModel.ComputeStatus
	Err             error
}

// RunFunc = Orchestrator.Recompute; bisa diganti di test.
type RunFunc func(ctx context.Context, studentID uuid.UUID, trigger logModel.Trigger, triggerID string) (int, logModel.ComputeStatus, error)

type pendingJob struct {
	job     Job
	waiters []chan Result
}

// slot per mahasiswa: maksimal satu run berjalan + satu antrean.
type slot struct {
	running bool
	pending *pendingJob
}

// Dispatcher menjalankan recompute di background.
// Run untuk mahasiswa yang sama tidak pernah tumpang tindih; trigger yang menumpuk digabung
// dan antrean memakai trigger terakhir.
type Dispatcher struct {
	run     RunFunc
	logger  log.Logger
	metrics *Metrics

	mu     sync.Mutex
	cond   *sync.Cond
	slots  map[uuid.UUID]*slot
	queue  []uuid.UUID
	closed bool
	wg     sync.WaitGroup

	workers int
}

func NewDispatcher(run RunFunc, workers int, metrics *Metrics, logger log.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	d := &Dispatcher{
		run:     run,
		logger:  log.With(logger, "component", "recompute_dispatcher"),
		metrics: metrics,
		slots:   map[uuid.UUID]*slot{},
		workers: workers,
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	level.Info(d.logger).Log("msg", "recompute dispatcher started", "workers", d.workers)
}

// enqueue; dipanggil dengan d.mu terkunci.
func (d *Dispatcher) submitLocked(job Job, waiter chan Result) bool {
	if d.closed {
		return false
	}
	s, ok := d.slots[job.StudentID]
	if !ok {
		s = &slot{}
		d.slots[job.StudentID] = s
	}

	if s.pending != nil {
		s.pending.job = job
		if waiter != nil {
			s.pending.waiters = append(s.pending.waiters, waiter)
		}
		d.metrics.Coalesced.Inc()
		return true
	}

	s.pending = &pendingJob{job: job}
	if waiter != nil {
		s.pending.waiters = append(s.pending.waiters, waiter)
	}
	// yang sedang jalan akan meng-enqueue ulang setelah selesai
	if !s.running {
		d.queue = append(d.queue, job.StudentID)
		d.cond.Signal()
	}
	return true
}

// Trigger tidak pernah blok. false kalau dispatcher sudah ditutup.
func (d *Dispatcher) Trigger(job Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	ok := d.submitLocked(job, nil)
	if !ok {
		level.Warn(d.logger).Log("msg", "trigger dropped, dispatcher closed", "student_id", job.StudentID, "trigger", job.Trigger)
	}
	return ok
}

// Do menunggu run yang memuat job ini selesai (bisa run gabungan).
func (d *Dispatcher) Do(ctx context.Context, job Job) Result {
	waiter := make(chan Result, 1)
	d.mu.Lock()
	ok := d.submitLocked(job, waiter)
	d.mu.Unlock()
	if !ok {
		return Result{Err: ErrDispatcherClosed}
	}
	select {
	case res := <-waiter:
		return res
	case <-ctx.Done():
		return Result{Err: errors.Wrap(ctx.Err(), "wait recompute")}
	}
}

func (d *Dispatcher) next() (uuid.UUID, *pendingJob, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) == 0 {
		if d.closed {
			return uuid.Nil, nil, false
		}
		d.cond.Wait()
	}
	id := d.queue[0]
	d.queue = d.queue[1:]
	s := d.slots[id]
	p := s.pending
	s.pending = nil
	s.running = true
	return id, p, true
}

func (d *Dispatcher) finish(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.slots[id]
	s.running = false
	if s.pending != nil {
		d.queue = append(d.queue, id)
		d.cond.Signal()
		return
	}
	delete(d.slots, id)
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		id, p, ok := d.next()
		if !ok {
			return
		}
		res := d.execute(p.job)
		for _, w := range p.waiters {
			w <- res
		}
		d.finish(id)
	}
}

func (d *Dispatcher) execute(job Job) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(d.logger).Log("msg", "recompute panic", "student_id", job.StudentID, "panic", r)
			res = Result{Status: logModel.ComputeFailed, Err: errors.Errorf("recompute panic: %v", r)}
		}
	}()
	// background: run tidak ikut batal saat request HTTP selesai
	n, status, err := d.run(context.Background(), job.StudentID, job.Trigger, job.TriggerID)
	return Result{SubjectsUpdated: n, Status: status, Err: err}
}

// Close menolak trigger baru lalu menunggu antrean dan run yang berjalan selesai.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		level.Info(d.logger).Log("msg", "recompute dispatcher drained")
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "drain recompute dispatcher")
	}
}

/* =========================
   Fan-out
   ========================= */

type BulkResult struct {
	Students  int `json:"students"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Subjects  int `json:"subjects_updated"`
}

// RecomputeAll menjalankan recompute untuk semua mahasiswa lewat dispatcher.
// Kegagalan per mahasiswa dihitung, bukan menghentikan fan-out.
func (d *Dispatcher) RecomputeAll(ctx context.Context, store repository.ReferenceStore, trigger logModel.Trigger, triggerID string) (BulkResult, error) {
	contexts, err := store.ListStudentContexts(ctx)
	if err != nil {
		return BulkResult{}, errors.Wrap(err, "list student contexts")
	}
	ids := make([]uuid.UUID, 0, len(contexts))
	for _, c := range contexts {
		ids = append(ids, c.StudentContextStudentID)
	}
	return d.RecomputeStudents(ctx, ids, trigger, triggerID)
}

func (d *Dispatcher) RecomputeStudents(ctx context.Context, ids []uuid.UUID, trigger logModel.Trigger, triggerID string) (BulkResult, error) {
	var ok, failed, subjects int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			res := d.Do(gctx, Job{StudentID: id, Trigger: trigger, TriggerID: triggerID})
			if errors.Is(res.Err, ErrDispatcherClosed) {
				return res.Err
			}
			if res.Err != nil {
				atomic.AddInt64(&failed, 1)
				return nil
			}
			atomic.AddInt64(&ok, 1)
			atomic.AddInt64(&subjects, int64(res.SubjectsUpdated))
			return nil
		})
	}
	err := g.Wait()
	out := BulkResult{
		Students:  len(ids),
		Succeeded: int(ok),
		Failed:    int(failed),
		Subjects:  int(subjects),
	}
	level.Info(d.logger).Log("msg", "bulk recompute finished", "trigger", trigger, "students", out.Students, "failed", out.Failed)
	return out, err
}
