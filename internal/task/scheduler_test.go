package task

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEnqueuer records when Enqueue was called and can be slowed down or made to fail.
type recordingEnqueuer struct {
	mu    sync.Mutex
	calls []time.Time
	kinds []string
	delay time.Duration
	err   error
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, kind string, ownerID uuid.UUID, payload json.RawMessage) (uuid.UUID, error) {
	e.mu.Lock()
	e.calls = append(e.calls, time.Now())
	e.kinds = append(e.kinds, kind)
	e.mu.Unlock()

	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if e.err != nil {
		return uuid.Nil, e.err
	}
	return uuid.New(), nil
}

func (e *recordingEnqueuer) snapshot() []time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]time.Time(nil), e.calls...)
}

func TestNextFire(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "run finished quickly",
			now:  base.Add(5 * time.Minute),
			want: base.Add(day),
		},
		{
			name: "run took most of the interval",
			now:  base.Add(23 * time.Hour),
			want: base.Add(day),
		},
		{
			name: "run overran one slot",
			now:  base.Add(day + time.Hour),
			want: base.Add(2 * day),
		},
		{
			name: "run overran several slots",
			now:  base.Add(3*day + time.Minute),
			want: base.Add(4 * day),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, nextFire(base, day, tt.now))
		})
	}
}

func TestScheduler_Schedule_Validation(t *testing.T) {
	t.Parallel()

	s := NewScheduler(&recordingEnqueuer{}, discardLogger())
	assert.Error(t, s.Schedule(KindCleanupSyllabi, nil, 0))
	assert.Error(t, s.Schedule(KindCleanupSyllabi, nil, -time.Second))
	require.NoError(t, s.Schedule(KindCleanupSyllabi, nil, time.Hour))

	s.Start(context.Background())
	defer s.Stop()
	assert.Error(t, s.Schedule(KindCleanupSyllabi, nil, time.Hour))
}

func TestScheduler_CadenceAnchoredToScheduledTime(t *testing.T) {
	t.Parallel()

	const interval = 60 * time.Millisecond
	enq := &recordingEnqueuer{delay: 40 * time.Millisecond}

	s := NewScheduler(enq, discardLogger())
	require.NoError(t, s.Schedule(KindCleanupSyllabi, nil, interval))

	start := time.Now()
	s.Start(context.Background())
	require.Eventually(t, func() bool { return len(enq.snapshot()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	calls := enq.snapshot()
	// A completion-anchored cadence would put the third firing near
	// 3*interval + 2*delay = 260ms; anchored firing lands near 180ms.
	third := calls[2].Sub(start)
	assert.Less(t, third, 3*interval+2*enq.delay-20*time.Millisecond, "third firing at %s", third)
	assert.GreaterOrEqual(t, third, 3*interval-10*time.Millisecond, "third firing at %s", third)
}

func TestScheduler_FailedEnqueueKeepsFiring(t *testing.T) {
	t.Parallel()

	enq := &recordingEnqueuer{err: errors.New("database unavailable")}
	s := NewScheduler(enq, discardLogger())
	require.NoError(t, s.Schedule(KindCleanupSyllabi, json.RawMessage(`{}`), 10*time.Millisecond))

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool { return len(enq.snapshot()) >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	enq := &recordingEnqueuer{}
	s := NewScheduler(enq, discardLogger())
	require.NoError(t, s.Schedule(KindCleanupSyllabi, nil, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Empty(t, enq.snapshot())
}
