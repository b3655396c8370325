package telemetry

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/posthog/posthog-go"
	"github.com/spf13/afero"
)

// Client records usage events. Track never blocks and never fails.
type Client interface {
	Track(event string, properties Properties)
	Close() error
}

// Properties are the event attributes.
type Properties = map[string]any

// privateKeys are dropped from every event before it is queued.
var privateKeys = map[string]struct{}{
	"identity": {},
	"email":    {},
	"user":     {},
	"update":   {},
	"message":  {},
	"prompt":   {},
}

// sender is the part of the PostHog SDK client the tracker uses.
type sender interface {
	Enqueue(msg posthog.Message) error
	Close() error
}

type posthogClient struct {
	sender      sender
	anonymousID string
	base        map[string]any
	closed      atomic.Bool
}

func newPostHogClient(s sender, anonymousID, version string) *posthogClient {
	return &posthogClient{
		sender:      s,
		anonymousID: anonymousID,
		base: map[string]any{
			"os":          runtime.GOOS,
			"arch":        runtime.GOARCH,
			"app_version": version,
			// anonymous events: no person profiles
			"$process_person_profile": false,
		},
	}
}

func (c *posthogClient) Track(event string, properties Properties) {
	if c.closed.Load() {
		return
	}
	props := posthog.NewProperties()
	for k, v := range properties {
		if _, private := privateKeys[k]; private {
			continue
		}
		props.Set(k, v)
	}
	for k, v := range c.base {
		props.Set(k, v)
	}
	_ = c.sender.Enqueue(posthog.Capture{
		DistinctId: c.anonymousID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes queued events. Later calls are no-ops.
func (c *posthogClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.sender.Close()
}

type noopClient struct{}

func (noopClient) Track(string, Properties) {}
func (noopClient) Close() error             { return nil }

// NewNoopClient returns a client that drops every event.
func NewNoopClient() Client {
	return noopClient{}
}

// Options configures New.
type Options struct {
	Enabled bool
	APIKey  string
	Version string
	// Dir holds the state file. Fs defaults to the OS filesystem.
	Dir string
	Fs  afero.Fs
	// Endpoint overrides the PostHog host.
	Endpoint string
}

// New returns a PostHog-backed client, or a no-op client when telemetry
// is disabled, has no API key, or its state cannot be read.
func New(opts Options) Client {
	if !opts.Enabled || opts.APIKey == "" {
		return NewNoopClient()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	st, err := LoadState(opts.Fs, opts.Dir)
	if err != nil {
		return NewNoopClient()
	}
	if !st.Enabled {
		st.Enabled = true
		if err := st.Save(opts.Fs, opts.Dir); err != nil {
			return NewNoopClient()
		}
	}

	ph, err := posthog.NewWithConfig(opts.APIKey, posthog.Config{
		Endpoint:  opts.Endpoint,
		BatchSize: 10,
		Interval:  time.Second,
		Logger:    silentLogger{},
	})
	if err != nil {
		return NewNoopClient()
	}
	return newPostHogClient(ph, st.AnonymousID, opts.Version)
}

// silentLogger keeps SDK transport warnings out of command output.
type silentLogger struct{}

func (silentLogger) Debugf(string, ...any) {}
func (silentLogger) Logf(string, ...any)   {}
func (silentLogger) Warnf(string, ...any)  {}
func (silentLogger) Errorf(string, ...any) {}
