package strategy

import (
	"fmt"
	"sync"

	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/utility"
)

// Registry holds named strategies in registration order.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]*Strategy
	order      []string
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]*Strategy)}
}

// BuildRegistry constructs and registers one strategy per config. Every
// strategy shares models, cache and opts.
func BuildRegistry(cfgs []Config, models *utility.Registry, cache *simplex.Cache, opts ...Option) (*Registry, error) {
	r := NewRegistry()
	for _, cfg := range cfgs {
		s, err := New(cfg, models, cache, opts...)
		if err != nil {
			return nil, err
		}
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(s *Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strategies[s.Name()]; ok {
		return fmt.Errorf("%w: duplicate strategy name %q", ErrInvalidConfig, s.Name())
	}
	r.strategies[s.Name()] = s
	r.order = append(r.order, s.Name())
	return nil
}

func (r *Registry) Get(name string) (*Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

func (r *Registry) List() []*Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Strategy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.strategies[name])
	}
	return out
}
