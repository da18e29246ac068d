package browserstate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PoolConfig configures the shared browser and its per-session contexts.
// Adapted from the teacher's browser.PoolConfig; MaxInstances here bounds
// concurrent browser contexts (one per concurrent root action) rather
// than whole browser processes, since this module's tabs all live inside
// one browser, addressed by alias.
type PoolConfig struct {
	MaxInstances   int
	Timeout        time.Duration
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	RemoteURL      string
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxInstances == 0 {
		c.MaxInstances = 5
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ViewportWidth == 0 {
		c.ViewportWidth = 1920
	}
	if c.ViewportHeight == 0 {
		c.ViewportHeight = 1080
	}
	return c
}

// Session is one acquired browser context plus its tab registry.
type Session struct {
	Context playwright.BrowserContext
	ID      string
}

// Pool manages a single shared playwright.Browser and hands out isolated
// BrowserContexts to concurrent root actions. Adapted from the teacher's
// browser.Pool (channel-backed free list, lazy creation up to a cap).
type Pool struct {
	config    PoolConfig
	sessions  chan *Session
	mu        sync.Mutex
	closed    bool
	pw        *playwright.Playwright
	browser   playwright.Browser
	userAgent int
	created   int
}

// NewPool installs and starts Playwright, launching (or connecting to)
// one shared Chromium browser.
func NewPool(config PoolConfig) (*Pool, error) {
	config = config.withDefaults()

	if strings.TrimSpace(config.RemoteURL) == "" {
		if err := playwright.Install(&playwright.RunOptions{Verbose: false}); err != nil {
			return nil, fmt.Errorf("browserstate: install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("browserstate: start playwright: %w", err)
	}

	var browser playwright.Browser
	if remote := normalizeRemoteURL(config.RemoteURL); remote != "" {
		browser, err = pw.Chromium.Connect(remote)
	} else {
		browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(config.Headless),
			Timeout:  playwright.Float(float64(config.Timeout.Milliseconds())),
		})
	}
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("browserstate: launch browser: %w", err)
	}

	return &Pool{
		config:   config,
		sessions: make(chan *Session, config.MaxInstances),
		pw:       pw,
		browser:  browser,
	}, nil
}

// Acquire returns a free session or creates one, blocking at capacity
// until one frees up or ctx is cancelled.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, fmt.Errorf("browserstate: pool is closed")
		}
		select {
		case s := <-p.sessions:
			p.mu.Unlock()
			return s, nil
		default:
		}
		if p.created < p.config.MaxInstances {
			p.created++
			p.mu.Unlock()
			s, err := p.createSession()
			if err != nil {
				p.mu.Lock()
				p.created--
				p.mu.Unlock()
				return nil, err
			}
			return s, nil
		}
		p.mu.Unlock()

		select {
		case s := <-p.sessions:
			return s, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release returns s to the free list, or tears it down if the pool is
// full or closed.
func (p *Pool) Release(s *Session) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		s.Context.Close()
		p.created--
		return
	}
	select {
	case p.sessions <- s:
	default:
		s.Context.Close()
		p.created--
	}
}

// Close tears down every session and stops the shared browser and the
// Playwright runtime.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	close(p.sessions)
	for s := range p.sessions {
		s.Context.Close()
	}
	p.created = 0

	if p.browser != nil {
		p.browser.Close()
	}
	if p.pw != nil {
		if err := p.pw.Stop(); err != nil {
			return fmt.Errorf("browserstate: stop playwright: %w", err)
		}
	}
	return nil
}

func (p *Pool) createSession() (*Session, error) {
	userAgent := p.nextUserAgent()
	bctx, err := p.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport: &playwright.Size{
			Width:  p.config.ViewportWidth,
			Height: p.config.ViewportHeight,
		},
		AcceptDownloads:   playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("browserstate: create browser context: %w", err)
	}
	return &Session{Context: bctx, ID: fmt.Sprintf("session-%d", time.Now().UnixNano())}, nil
}

var rotatingUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

func (p *Pool) nextUserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ua := rotatingUserAgents[p.userAgent%len(rotatingUserAgents)]
	p.userAgent++
	return ua
}

func normalizeRemoteURL(raw string) string {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return ""
	case strings.HasPrefix(value, "http://"):
		return "ws://" + strings.TrimPrefix(value, "http://")
	case strings.HasPrefix(value, "https://"):
		return "wss://" + strings.TrimPrefix(value, "https://")
	default:
		return value
	}
}
