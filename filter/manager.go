package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Manager keeps named filter presets and compiles ad-hoc expressions
// through a shared cache.
type Manager struct {
	compiler Compiler
	filters  map[string]CompiledFilter
	mu       sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewCompiler(),
		filters:  make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterFilter registers a new preset or replaces an existing one.
// Names are case-insensitive.
func (m *Manager) RegisterFilter(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[strings.ToLower(name)] = filter
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers multiple presets at once. Nothing is registered
// unless every expression compiles.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	// Compile all filters first, in a stable order so errors are deterministic
	for _, name := range slices.Sorted(maps.Keys(filters)) {
		filter, err := m.compiler.Compile(filters[name])
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[strings.ToLower(name)] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// UnregisterFilter removes a preset
func (m *Manager) UnregisterFilter(name string) {
	m.mu.Lock()
	delete(m.filters, strings.ToLower(name))
	m.mu.Unlock()
}

// GetFilter returns a preset by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[strings.ToLower(name)]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns all registered preset names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// Resolve builds the filter for a preset name and/or an expression. When
// both are given they must both match. It returns nil when neither is set.
func (m *Manager) Resolve(preset, expression string) (CompiledFilter, error) {
	preset = strings.TrimSpace(preset)
	expression = strings.TrimSpace(expression)

	if preset == "" {
		if expression == "" {
			return nil, nil
		}
		return m.compiler.Compile(expression)
	}

	filter, ok := m.GetFilter(preset)
	if !ok {
		return nil, fmt.Errorf("filter preset '%s' not found (available: %s)", preset, strings.Join(m.ListFilters(), ", "))
	}
	if expression == "" {
		return filter, nil
	}

	return m.compiler.Compile(fmt.Sprintf("(%s) and (%s)", filter.Expression(), expression))
}
