// Package fixtures records what command registration hands to its
// integrations so tests can assert on menu handler wiring.
package fixtures

import (
	"sync"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-menus/internal/commands"
)

// CronEntry is one handler passed to the cron registrar.
type CronEntry struct {
	Config  command.HandlerConfig
	Handler any
}

// Subscription is a dispatcher subscription handed out by a Recorder.
type Subscription struct {
	Handler  any
	released bool
}

// Unsubscribe releases the subscription.
func (s *Subscription) Unsubscribe() { s.released = true }

// Released reports whether Unsubscribe ran.
func (s *Subscription) Released() bool { return s.released }

// Recorder stands in for the registry, dispatcher and cron scheduler at
// once. Setting one of the Err fields makes that integration fail.
type Recorder struct {
	mu sync.Mutex

	Registered []any
	Subscribed []*Subscription
	Cron       []CronEntry

	RegistryErr   error
	DispatcherErr error
	CronErr       error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Options wires every integration of the recorder.
func (r *Recorder) Options() commands.RegistrationOptions {
	return commands.RegistrationOptions{
		Registry:      r.Registry(),
		Dispatcher:    r.Dispatcher(),
		CronRegistrar: r.CronRegistrar(),
	}
}

// Registry returns the recorder as a commands.CommandRegistry.
func (r *Recorder) Registry() commands.CommandRegistry { return registryView{r} }

// Dispatcher returns the recorder as a commands.CommandDispatcher.
func (r *Recorder) Dispatcher() commands.CommandDispatcher { return dispatcherView{r} }

// CronRegistrar returns the recorder as a commands.CronRegistrar.
func (r *Recorder) CronRegistrar() commands.CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.CronErr != nil {
			return r.CronErr
		}
		r.Cron = append(r.Cron, CronEntry{Config: cfg, Handler: handler})
		return nil
	}
}

// CronExpressions lists the expressions handlers were scheduled with.
func (r *Recorder) CronExpressions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Cron))
	for _, entry := range r.Cron {
		out = append(out, entry.Config.Expression)
	}
	return out
}

// Live counts subscriptions that have not been released.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	live := 0
	for _, sub := range r.Subscribed {
		if !sub.Released() {
			live++
		}
	}
	return live
}

type registryView struct{ r *Recorder }

func (v registryView) RegisterCommand(handler any) error {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	if v.r.RegistryErr != nil {
		return v.r.RegistryErr
	}
	v.r.Registered = append(v.r.Registered, handler)
	return nil
}

type dispatcherView struct{ r *Recorder }

func (v dispatcherView) RegisterCommand(handler any) (commands.CommandSubscription, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	if v.r.DispatcherErr != nil {
		return nil, v.r.DispatcherErr
	}
	sub := &Subscription{Handler: handler}
	v.r.Subscribed = append(v.r.Subscribed, sub)
	return sub, nil
}
