package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/pkg/oxidb"
)

const (
	dialTimeout       = 5 * time.Second
	keepaliveInterval = 10 * time.Second
)

// Pool is a round-robin connection pool for OxiDB with auto-reconnect.
type Pool struct {
	host    string
	port    int
	log     *zap.Logger
	clients []*oxidb.Client
	mu      sync.RWMutex
	idx     uint64
	stop    chan struct{}
	once    sync.Once
}

// NewPool creates a pool of n OxiDB connections.
func NewPool(ctx context.Context, host string, port, size int, log *zap.Logger) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		host:    host,
		port:    port,
		log:     log,
		clients: make([]*oxidb.Client, size),
		stop:    make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		c, err := oxidb.Connect(dialCtx, host, port)
		cancel()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = c
	}
	// Keepalive pings prevent the server's idle timeout from dropping us
	go p.keepalive()
	return p, nil
}

// Get returns the next client in round-robin order. A broken client is
// replaced before it is handed out; if the redial fails the broken client is
// returned and its calls fail with oxidb.ErrBroken.
func (p *Pool) Get() *oxidb.Client {
	n := atomic.AddUint64(&p.idx, 1)
	i := int(n % uint64(len(p.clients)))
	p.mu.RLock()
	c := p.clients[i]
	p.mu.RUnlock()
	if c.Broken() {
		return p.replace(i, c)
	}
	return c
}

// Size reports the number of pooled connections.
func (p *Pool) Size() int {
	return len(p.clients)
}

// replace swaps the broken client at index i for a fresh connection and
// returns whatever client then sits at i. When another caller already
// replaced old, the new dial is discarded.
func (p *Pool) replace(i int, old *oxidb.Client) *oxidb.Client {
	select {
	case <-p.stop:
		return old
	default:
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	c, err := oxidb.Connect(ctx, p.host, p.port)
	if err != nil {
		p.log.Warn("pool: reconnect failed", zap.Int("client", i), zap.Error(err))
		p.mu.RLock()
		defer p.mu.RUnlock()
		return p.clients[i]
	}
	p.mu.Lock()
	if p.clients[i] != old {
		cur := p.clients[i]
		p.mu.Unlock()
		c.Close()
		return cur
	}
	p.clients[i] = c
	p.mu.Unlock()
	old.Close()
	p.log.Info("pool: client reconnected", zap.Int("client", i))
	return c
}

func (p *Pool) keepalive() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.pingAll()
		}
	}
}

func (p *Pool) pingAll() {
	for i := range p.clients {
		p.mu.RLock()
		c := p.clients[i]
		p.mu.RUnlock()

		if c.Broken() {
			p.replace(i, c)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		_, err := c.Ping(ctx)
		cancel()
		if err != nil {
			p.log.Warn("pool: ping failed, reconnecting", zap.Int("client", i), zap.Error(err))
			p.replace(i, c)
		}
	}
}

// Close stops the keepalive loop and closes all connections.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.stop)
		p.mu.Lock()
		defer p.mu.Unlock()
		for _, c := range p.clients {
			if c != nil {
				c.Close()
			}
		}
	})
}
