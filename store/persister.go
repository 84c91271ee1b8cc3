package store

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "maker-profiles/store"

// Persister keeps the snapshot file eventually consistent with a
// ProfileStore. The store stays authoritative: a failed write is logged
// and counted, never rolled back.
type Persister struct {
	store     ProfileStore
	path      string
	debouncer *Debouncer

	flushes  metric.Int64Counter
	duration metric.Float64Histogram

	mu      sync.Mutex
	lastErr error
}

func NewPersister(profileStore ProfileStore, path string, delay time.Duration, afterFunc AfterFunc) *Persister {
	p := &Persister{store: profileStore, path: path}
	p.debouncer = NewDebouncer(delay, p.flush, afterFunc)

	meter := otel.Meter(meterName)
	var err error
	if p.flushes, err = meter.Int64Counter("snapshot.flushes",
		metric.WithDescription("Snapshot writes by outcome")); err != nil {
		log.Printf("snapshot metrics disabled: %v", err)
		p.flushes = noop.Int64Counter{}
	}
	if p.duration, err = meter.Float64Histogram("snapshot.flush.duration",
		metric.WithUnit("ms"), metric.WithDescription("Snapshot write latency")); err != nil {
		log.Printf("snapshot metrics disabled: %v", err)
		p.duration = noop.Float64Histogram{}
	}
	return p
}

func (p *Persister) Path() string {
	return p.path
}

// Load replaces the store with the snapshot contents. It returns false
// when there is no usable prior state; the store is left empty then.
func (p *Persister) Load() bool {
	profiles, err := ReadSnapshot(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("snapshot load path=%s result=missing", p.path)
		} else {
			log.Printf("snapshot load path=%s result=unusable err=%v", p.path, err)
		}
		p.store.Replace(nil)
		return false
	}

	count := p.store.Replace(profiles)
	log.Printf("snapshot load path=%s result=ok profiles=%d", p.path, count)
	return true
}

// ScheduleSave requests a write. Calls inside one window collapse into a
// single write of whatever the store holds when the window closes.
func (p *Persister) ScheduleSave() {
	p.debouncer.Arm()
}

// Flush writes immediately, dropping any pending window.
func (p *Persister) Flush() error {
	p.debouncer.FlushNow()
	return p.LastError()
}

// Close writes a pending window out immediately. Without pending changes
// the file is left untouched.
func (p *Persister) Close() error {
	if !p.debouncer.Pending() {
		p.debouncer.Wait()
		return p.LastError()
	}
	return p.Flush()
}

// LastError is the result of the most recent write.
func (p *Persister) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Persister) flush() {
	start := time.Now()
	profiles := p.store.List()
	err := WriteSnapshot(p.path, profiles)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Printf("snapshot flush path=%s profiles=%d duration=%s err=%v", p.path, len(profiles), elapsed, err)
	}

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	p.flushes.Add(ctx, 1, attrs)
	p.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}
