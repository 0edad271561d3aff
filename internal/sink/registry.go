package sink

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownSink is matched by every *UnknownSinkError.
var ErrUnknownSink = errors.New("unknown sink")

// Factory builds a sink writing to location. The meaning of location is
// sink specific: a file path, a directory or a connection string.
type Factory func(location string, logger *slog.Logger) Sink

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a sink factory to the registry.
// Called by sink implementations in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a sink factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New creates the sink a target names.
// The logger is passed to the sink constructor (nil uses discard logger).
func New(target Target, logger *slog.Logger) (Sink, error) {
	if target.Type == "" {
		return nil, fmt.Errorf("sink type not specified")
	}

	factory, ok := Get(target.Type)
	if !ok {
		return nil, &UnknownSinkError{
			Type:      target.Type,
			Available: List(),
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(target.Location, logger), nil
}

// List returns all registered sink names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a sink type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownSinkError is returned when an unknown sink type is requested.
type UnknownSinkError struct {
	Type      string
	Available []string
}

func (e *UnknownSinkError) Error() string {
	return fmt.Sprintf("unknown sink type %q\nAvailable sinks: %s\nHint: targets are written as type=location, e.g. sqlite=practice.db",
		e.Type, strings.Join(e.Available, ", "))
}

// Unwrap lets errors.Is match ErrUnknownSink.
func (e *UnknownSinkError) Unwrap() error {
	return ErrUnknownSink
}
