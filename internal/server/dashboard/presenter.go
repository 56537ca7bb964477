// Package dashboard owns the dashboard state: fetched datasets, the trace
// buckets derived from them and the locally ticking uptime counter.
package dashboard

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/models"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const maxPendingAlerts = 50

var errNoMeasurement = errors.New("process uptime metric has no measurements")

// Source is the management endpoint the presenter reads from.
type Source interface {
	GetHTTPTraces(ctx context.Context) ([]models.Trace, error)
	GetSystemCPU(ctx context.Context) (*models.Metric, error)
	GetSystemHealth(ctx context.Context) (*models.SystemHealth, error)
	GetProcessUptime(ctx context.Context) (*models.Metric, error)
}

// SnapshotRecorder receives bucket counts after every successful classification.
type SnapshotRecorder interface {
	RecordBuckets(ctx context.Context, counts models.BucketCounts) error
}

type Options struct {
	PageSize     int
	TickInterval time.Duration
	Recorder     SnapshotRecorder
	Now          func() time.Time
	NewID        func() string
}

type Presenter struct {
	source Source
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	generation uint64
	closed     bool

	traces    []models.Trace
	byID      map[string]int
	buckets   models.TraceBuckets
	cpu       *models.Metric
	health    *models.SystemHealth
	uptime    int64
	seeded    bool
	states    models.DatasetStates
	alerts    []models.Alert
	updatedAt time.Time

	tickCancel  context.CancelFunc
	subscribers map[chan models.UptimeView]struct{}
}

// New creates a presenter whose fetches and ticker live until ctx is done or Close is called.
func New(ctx context.Context, source Source, opts Options) *Presenter {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	pctx, cancel := context.WithCancel(ctx)
	return &Presenter{
		source:  source,
		opts:    opts,
		ctx:     pctx,
		cancel:  cancel,
		byID:    map[string]int{},
		buckets: emptyBuckets(),
		states: models.DatasetStates{
			Traces: models.StateUninitialized,
			CPU:    models.StateUninitialized,
			Health: models.StateUninitialized,
			Uptime: models.StateUninitialized,
		},
		subscribers: map[chan models.UptimeView]struct{}{},
	}
}

// LoadAll issues the four fetches without waiting on each other. Each completion
// only touches its own dataset; a failure raises an alert and leaves the dataset
// absent or stale.
func (p *Presenter) LoadAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadAllLocked()
}

// Refresh empties the trace buckets, stops the uptime ticker and fetches everything again.
// The buckets stay empty until the new trace list arrives. The ticker resumes when the
// uptime fetch completes, from the new seed or, on failure, from the previous one.
func (p *Presenter) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.generation++
	p.traces = nil
	p.byID = map[string]int{}
	p.buckets = emptyBuckets()
	p.stopTickerLocked()

	appLogger.Info("Refreshing dashboard data (generation %d)", p.generation)
	p.loadAllLocked()
}

func (p *Presenter) loadAllLocked() {
	if p.closed {
		return
	}
	gen := p.generation
	p.states = models.DatasetStates{
		Traces: models.StateLoading,
		CPU:    models.StateLoading,
		Health: models.StateLoading,
		Uptime: models.StateLoading,
	}

	p.wg.Add(4)
	go p.fetchTraces(gen)
	go p.fetchCPU(gen)
	go p.fetchHealth(gen)
	go p.fetchUptime(gen)
}

// Wait blocks until every fetch issued so far has completed.
func (p *Presenter) Wait() {
	p.wg.Wait()
}

// Close stops the ticker, cancels in-flight fetches and releases uptime subscribers.
func (p *Presenter) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stopTickerLocked()
	p.cancel()
	for ch := range p.subscribers {
		close(ch)
		delete(p.subscribers, ch)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Presenter) fetchTraces(gen uint64) {
	defer p.wg.Done()
	traces, err := p.source.GetHTTPTraces(p.ctx)

	p.mu.Lock()
	if gen != p.generation || p.closed {
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.states.Traces = stateAfterFailure(p.traces != nil)
		p.alertLocked("traces", err)
		p.mu.Unlock()
		return
	}

	byID := make(map[string]int, len(traces))
	for i := range traces {
		if traces[i].ID == "" {
			traces[i].ID = p.opts.NewID()
		}
		byID[traces[i].ID] = i
	}
	now := p.opts.Now()
	p.traces = traces
	p.byID = byID
	p.buckets = Classify(traces)
	p.states.Traces = models.StateLoaded
	p.updatedAt = now

	counts := countBuckets(p.buckets, now)
	if p.cpu != nil {
		if v, ok := p.cpu.FirstValue(); ok {
			counts.CPUUsage = &v
		}
	}
	appLogger.Info("Loaded %d traces (200=%d 400=%d 404=%d 500=%d other=%d)",
		len(traces), counts.OK, counts.BadRequest, counts.NotFound, counts.ServerError, counts.Other)
	p.mu.Unlock()

	if p.opts.Recorder != nil {
		if err := p.opts.Recorder.RecordBuckets(p.ctx, counts); err != nil {
			appLogger.Warn("Failed to record bucket counts: %v", err)
		}
	}
}

func (p *Presenter) fetchCPU(gen uint64) {
	defer p.wg.Done()
	cpu, err := p.source.GetSystemCPU(p.ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation || p.closed {
		return
	}
	if err != nil {
		p.states.CPU = stateAfterFailure(p.cpu != nil)
		p.alertLocked("cpu", err)
		return
	}
	appLogger.Debug("CPU metric received: %+v", cpu)
	p.cpu = cpu
	p.states.CPU = models.StateLoaded
}

func (p *Presenter) fetchHealth(gen uint64) {
	defer p.wg.Done()
	health, err := p.source.GetSystemHealth(p.ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation || p.closed {
		return
	}
	if err != nil {
		p.states.Health = stateAfterFailure(p.health != nil)
		p.alertLocked("health", err)
		return
	}
	if ds := health.Details.DiskSpace; ds != nil {
		ds.Details.FreeDisplay = FormatBytes(ds.Details.Free)
	}
	appLogger.Debug("Health report received: status %s", health.Status)
	p.health = health
	p.states.Health = models.StateLoaded
}

func (p *Presenter) fetchUptime(gen uint64) {
	defer p.wg.Done()
	metric, err := p.source.GetProcessUptime(p.ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation || p.closed {
		return
	}
	if err != nil {
		p.uptimeFailedLocked(err)
		return
	}
	value, ok := metric.FirstValue()
	if !ok {
		p.uptimeFailedLocked(errNoMeasurement)
		return
	}

	p.uptime = int64(math.Round(value))
	p.seeded = true
	p.states.Uptime = models.StateLoaded
	appLogger.Debug("Uptime seeded at %s", FormatUptime(p.uptime))
	p.broadcastLocked()
	p.startTickerLocked()
}

// uptimeFailedLocked keeps counting from the previous seed, if there is one.
func (p *Presenter) uptimeFailedLocked(err error) {
	p.states.Uptime = stateAfterFailure(p.seeded)
	p.alertLocked("uptime", err)
	if p.seeded {
		p.startTickerLocked()
	}
}

func stateAfterFailure(hasData bool) models.DatasetState {
	if hasData {
		return models.StateLoaded
	}
	return models.StateUninitialized
}

func (p *Presenter) alertLocked(dataset string, err error) {
	appLogger.Error("Failed to fetch %s: %v", dataset, err)
	p.alerts = append(p.alerts, models.Alert{
		Dataset: dataset,
		Message: err.Error(),
		At:      p.opts.Now(),
	})
	if len(p.alerts) > maxPendingAlerts {
		p.alerts = p.alerts[len(p.alerts)-maxPendingAlerts:]
	}
}

// TickUptime advances the displayed uptime by one second and returns the new value.
func (p *Presenter) TickUptime() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uptime++
	p.broadcastLocked()
	return p.uptime
}

func (p *Presenter) startTickerLocked() {
	if p.tickCancel != nil || p.closed {
		return
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.tickCancel = cancel
	go p.runTicker(ctx)
}

func (p *Presenter) stopTickerLocked() {
	if p.tickCancel != nil {
		p.tickCancel()
		p.tickCancel = nil
	}
}

func (p *Presenter) runTicker(ctx context.Context) {
	ticker := time.NewTicker(p.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			// cancellation happens under the lock, so a stopped ticker never ticks again
			if ctx.Err() == nil {
				p.uptime++
				p.broadcastLocked()
			}
			p.mu.Unlock()
		}
	}
}

// TickerRunning reports whether the uptime ticker is active.
func (p *Presenter) TickerRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tickCancel != nil
}

// SubscribeUptime returns a channel that receives the uptime after every change.
// The channel keeps only the latest value; call the returned func to unsubscribe.
func (p *Presenter) SubscribeUptime() (<-chan models.UptimeView, func()) {
	ch := make(chan models.UptimeView, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	p.subscribers[ch] = struct{}{}
	ch <- p.uptimeViewLocked()

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
	}
}

func (p *Presenter) broadcastLocked() {
	view := p.uptimeViewLocked()
	for ch := range p.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

func (p *Presenter) uptimeViewLocked() models.UptimeView {
	return models.UptimeView{Seconds: p.uptime, Display: FormatUptime(p.uptime)}
}

// Uptime returns the current uptime counter.
func (p *Presenter) Uptime() models.UptimeView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.uptimeViewLocked()
}

// Buckets returns the current partition. The slices must not be modified.
func (p *Presenter) Buckets() models.TraceBuckets {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.buckets
}

// States returns the per-dataset load state.
func (p *Presenter) States() models.DatasetStates {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.states
}

// Charts derives both chart datasets from the current buckets.
func (p *Presenter) Charts() models.Charts {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.chartsLocked()
}

func (p *Presenter) chartsLocked() models.Charts {
	at := p.updatedAt
	if at.IsZero() {
		at = p.opts.Now()
	}
	return BuildCharts(p.buckets, at)
}

// Trace looks up a single trace for the detail view.
func (p *Presenter) Trace(id string) (models.Trace, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.byID[id]
	if !ok {
		return models.Trace{}, false
	}
	return p.traces[i], true
}

// Traces returns the current trace list in fetch order.
func (p *Presenter) Traces() []models.Trace {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.Trace{}, p.traces...)
}

// Page returns one page of the trace list. Pages start at 1.
func (p *Presenter) Page(page int) models.TracePage {
	p.mu.RLock()
	defer p.mu.RUnlock()

	size := p.opts.PageSize
	total := len(p.traces)
	if page < 1 {
		page = 1
	}
	result := models.TracePage{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
		Traces:     []models.Trace{},
	}
	start := (page - 1) * size
	if start >= total {
		return result
	}
	end := start + size
	if end > total {
		end = total
	}
	result.Traces = append(result.Traces, p.traces[start:end]...)
	return result
}

// DrainAlerts returns the pending alerts and clears them.
func (p *Presenter) DrainAlerts() []models.Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	alerts := p.alerts
	p.alerts = nil
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return alerts
}

// Snapshot copies the presenter state for rendering. Pending alerts are included but not drained.
func (p *Presenter) Snapshot() models.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := models.Snapshot{
		Traces:   append([]models.Trace{}, p.traces...),
		Buckets:  p.buckets,
		CPU:      p.cpu,
		Health:   p.health,
		Uptime:   p.uptimeViewLocked(),
		States:   p.states,
		Charts:   p.chartsLocked(),
		Alerts:   append([]models.Alert{}, p.alerts...),
		PageSize: p.opts.PageSize,
	}
	if !p.updatedAt.IsZero() {
		at := p.updatedAt
		snap.UpdatedAt = &at
		snap.UpdatedAgo = humanize.Time(at)
	}
	return snap
}
