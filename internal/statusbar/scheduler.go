package statusbar

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Poller runs every module once per interval and hands the results to a sink.
type Poller struct {
	modules  []Module
	interval time.Duration
	timeout  time.Duration
	sink     Sink

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewPoller creates a poller. A zero interval defaults to one second; a zero
// timeout leaves queries bounded only by the poller's context.
func NewPoller(modules []Module, interval, timeout time.Duration, sink Sink) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		modules:  modules,
		interval: interval,
		timeout:  timeout,
		sink:     sink,
	}
}

// Start runs the poller in the background until Stop is called.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("poller is already running")
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.done = make(chan struct{})
	p.running = true

	go func() {
		defer close(p.done)
		p.Run(p.ctx)
	}()

	log.Infof("status poller started (interval %v)", p.interval)
	return nil
}

// Stop stops a poller started with Start and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.running = false
	done := p.done
	p.mu.Unlock()

	<-done
	log.Info("status poller stopped")
}

// IsRunning returns whether the poller is running
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Run ticks immediately and then once per interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("recovered from panic in poller run loop: %v", r)
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.deliver(p.Tick(ctx))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.deliver(p.Tick(ctx))
		}
	}
}

func (p *Poller) deliver(snap Snapshot) {
	if p.sink != nil {
		p.sink(snap)
	}
}

// Tick queries every module concurrently. A module that errors or panics
// contributes Placeholder; Tick itself never fails.
func (p *Poller) Tick(ctx context.Context) Snapshot {
	snap := Snapshot{
		Values: make(map[string]string, len(p.modules)),
		Order:  make([]string, 0, len(p.modules)),
		At:     time.Now(),
	}

	results := make([]string, len(p.modules))
	var wg sync.WaitGroup
	for i, module := range p.modules {
		wg.Add(1)
		go func(i int, module Module) {
			defer wg.Done()
			results[i] = p.query(ctx, module)
		}(i, module)
	}
	wg.Wait()

	for i, module := range p.modules {
		snap.Values[module.Name()] = results[i]
		snap.Order = append(snap.Order, module.Name())
	}
	return snap
}

func (p *Poller) query(ctx context.Context, module Module) (value string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("recovered from panic in module '%s': %v", module.Name(), r)
			value = Placeholder
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	v, err := module.Query(ctx)
	if err != nil {
		log.WithError(err).Debugf("module '%s' query failed", module.Name())
		return Placeholder
	}
	return v
}
