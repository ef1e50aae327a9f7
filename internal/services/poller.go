package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/store"
	"github.com/Capstone-E1/agrismart_backend/internal/thingspeak"
)

var (
	// ErrStaleResult is returned when a newer poll was committed first
	ErrStaleResult = errors.New("poll result superseded by a newer one")
	// ErrPollerStopped is returned when a poll resolves after Stop
	ErrPollerStopped = errors.New("poller stopped")
)

// FeedFetcher fetches channel feeds, returning nil on any failure
type FeedFetcher interface {
	FetchFeeds(ctx context.Context, results int) *thingspeak.FeedResponse
}

// Translator resolves display text
type Translator interface {
	T(key string, replacements map[string]interface{}) string
}

// SnapshotListener is notified after each committed snapshot, in sequence
// order. OnSnapshot must not block.
type SnapshotListener interface {
	OnSnapshot(snapshot *models.Snapshot, changes []models.StatusChange)
}

// PollerConfig holds the polling cadence
type PollerConfig struct {
	Interval       time.Duration
	InitialResults int
	PollResults    int
	FetchTimeout   time.Duration
}

// DefaultPollerConfig returns the dashboard cadence: 100 records on the first
// load, then 20 every 20 seconds
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:       20 * time.Second,
		InitialResults: 100,
		PollResults:    20,
		FetchTimeout:   15 * time.Second,
	}
}

// Poller periodically fetches the channel, maps it and commits the snapshot.
// Every poll gets a sequence number; results are committed only if no newer
// poll was committed before them.
type Poller struct {
	fetcher    FeedFetcher
	mapper     *Mapper
	template   []models.TemplateSensor
	store      store.SnapshotStore
	translator Translator
	config     PollerConfig

	mu        sync.Mutex
	ticker    *time.Ticker
	stopChan  chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	stopped   bool

	sequence    atomic.Uint64
	initialSent atomic.Bool

	listenersMu sync.RWMutex
	listeners   []SnapshotListener

	notifyMu     sync.Mutex
	lastNotified *models.Snapshot

	now         func() time.Time
	afterCommit func(*models.Snapshot)
}

// NewPoller creates a poller. translator may be nil.
func NewPoller(fetcher FeedFetcher, mapper *Mapper, template []models.TemplateSensor, snapshots store.SnapshotStore, translator Translator, config PollerConfig) *Poller {
	defaults := DefaultPollerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.InitialResults <= 0 {
		config.InitialResults = defaults.InitialResults
	}
	if config.PollResults <= 0 {
		config.PollResults = defaults.PollResults
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = defaults.FetchTimeout
	}

	return &Poller{
		fetcher:    fetcher,
		mapper:     mapper,
		template:   template,
		store:      snapshots,
		translator: translator,
		config:     config,
		now:        time.Now,
	}
}

// AddListener registers a snapshot listener
func (p *Poller) AddListener(l SnapshotListener) {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()
	p.listeners = append(p.listeners, l)
}

// Start begins polling in the background until ctx ends or Stop is called
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		log.Println("⚠️  Poller: Already running")
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.ticker = time.NewTicker(p.config.Interval)
	p.stopChan = make(chan struct{})
	p.done = make(chan struct{})
	p.isRunning = true
	p.stopped = false

	log.Printf("🕐 Poller: Started - fetching every %s", p.config.Interval)

	go p.run(p.ctx, p.ticker, p.stopChan, p.done)
}

// Stop halts polling. Polls still in flight are cancelled and their results
// are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}

	p.halt()
	close(p.stopChan)
	done := p.done
	p.mu.Unlock()

	<-done
	log.Println("🛑 Poller: Stopped")
}

// halt marks the poller stopped; p.mu must be held
func (p *Poller) halt() {
	p.cancel()
	p.ticker.Stop()
	p.isRunning = false
	p.stopped = true
}

// IsRunning reports whether the background loop is active
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isRunning
}

// run is the main polling loop. Each tick runs in its own goroutine so a slow
// fetch never delays the next tick.
func (p *Poller) run(ctx context.Context, ticker *time.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	var ticks sync.WaitGroup
	defer close(done)
	defer ticks.Wait()

	spawn := func() {
		ticks.Add(1)
		go func() {
			defer ticks.Done()
			if _, err := p.poll(ctx); err != nil && !errors.Is(err, ErrPollerStopped) && !errors.Is(err, context.Canceled) {
				log.Printf("⚠️  Poller: %v", err)
			}
		}()
	}

	// Fetch immediately on start
	spawn()

	for {
		select {
		case <-ticker.C:
			spawn()
		case <-stop:
			return
		case <-ctx.Done():
			p.mu.Lock()
			if p.isRunning && p.done == done {
				p.halt()
			}
			p.mu.Unlock()
			return
		}
	}
}

// PollOnce runs a single poll and commits its result
func (p *Poller) PollOnce(ctx context.Context) (*models.Snapshot, error) {
	return p.poll(ctx)
}

func (p *Poller) poll(ctx context.Context) (*models.Snapshot, error) {
	seq := p.sequence.Add(1)
	results := p.config.PollResults
	if p.initialSent.CompareAndSwap(false, true) {
		results = p.config.InitialResults
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.config.FetchTimeout)
	resp := p.fetcher.FetchFeeds(fetchCtx, results)
	cancel()

	snap := p.buildSnapshot(seq, resp)
	if err := p.commit(ctx, snap); err != nil {
		return nil, err
	}
	if p.afterCommit != nil {
		p.afterCommit(snap)
	}

	p.notify(snap)
	return snap, nil
}

// commit stores snap unless the poller stopped, ctx ended or a newer poll won
func (p *Poller) commit(ctx context.Context, snap *models.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPollerStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, ok := p.store.ReplaceSnapshot(snap); !ok {
		return ErrStaleResult
	}
	return nil
}

func (p *Poller) buildSnapshot(seq uint64, resp *thingspeak.FeedResponse) *models.Snapshot {
	snap := &models.Snapshot{
		Sequence:  seq,
		FetchedAt: p.now().UTC(),
		Sensors:   p.mapper.Map(resp, p.template, p.placeholder()),
	}
	if resp != nil {
		snap.Live = len(resp.Feeds) > 0
		snap.ChannelName = resp.Channel.Name
		snap.LastEntryID = resp.Channel.LastEntryID
	}
	return snap
}

func (p *Poller) placeholder() string {
	if p.translator == nil {
		return DefaultPlaceholder
	}
	return p.translator.T("common.na", nil)
}

// notify hands snap to the listeners in sequence order. A snapshot committed
// earlier but reaching notify after a newer one is skipped; status changes are
// computed against the last snapshot the listeners saw.
func (p *Poller) notify(snap *models.Snapshot) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	prev := p.lastNotified
	if prev != nil && snap.Sequence <= prev.Sequence {
		return
	}
	p.lastNotified = snap

	var changes []models.StatusChange
	if prev != nil {
		changes = models.DiffStatuses(prev.Sensors, snap.Sensors)
	}
	for _, c := range changes {
		log.Printf("🔔 Poller: %s status %s -> %s", c.Type, c.From.Key(), c.To.Key())
	}

	p.listenersMu.RLock()
	listeners := append([]SnapshotListener(nil), p.listeners...)
	p.listenersMu.RUnlock()

	for _, l := range listeners {
		l.OnSnapshot(snap, changes)
	}
}
