package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ieum-ai/ieum/internal/predict"
	"github.com/ieum-ai/ieum/pkg/recognizer"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider kind. main registers the backends compiled into the binary and
// the app instantiates them from configuration. It is safe for
// concurrent use.
type Registry struct {
	mu          sync.RWMutex
	recognizers map[string]func(ProviderEntry) (recognizer.Provider, error)
	predictors  map[string]func(PredictorConfig) (predict.Predictor, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		recognizers: make(map[string]func(ProviderEntry) (recognizer.Provider, error)),
		predictors:  make(map[string]func(PredictorConfig) (predict.Predictor, error)),
	}
}

// RegisterRecognizer registers a recognition provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterRecognizer(name string, factory func(ProviderEntry) (recognizer.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recognizers[name] = factory
}

// RegisterPredictor registers a spacing predictor factory under name.
func (r *Registry) RegisterPredictor(name string, factory func(PredictorConfig) (predict.Predictor, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictors[name] = factory
}

// CreateRecognizer instantiates a recognition provider using the factory
// registered under entry.Provider.
// Returns [ErrProviderNotRegistered] if no factory has been registered for
// that name.
func (r *Registry) CreateRecognizer(entry ProviderEntry) (recognizer.Provider, error) {
	r.mu.RLock()
	factory, ok := r.recognizers[entry.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: recognizer/%q", ErrProviderNotRegistered, entry.Provider)
	}
	return factory(entry)
}

// CreatePredictor instantiates a spacing predictor using the factory
// registered under pc.Provider.
func (r *Registry) CreatePredictor(pc PredictorConfig) (predict.Predictor, error) {
	r.mu.RLock()
	factory, ok := r.predictors[pc.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: predictor/%q", ErrProviderNotRegistered, pc.Provider)
	}
	return factory(pc)
}
