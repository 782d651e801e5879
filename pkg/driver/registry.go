// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// enumeratedSteps caches the step descriptors discovered across a Bundle's
// interface slots for one workflow kind.
type enumeratedSteps struct {
	deploy  []StepDescriptor
	clean   []StepDescriptor
	service []StepDescriptor
}

// Registry resolves hardware-type names to driver Bundles. Step enumeration
// over a Bundle's interfaces happens once, at Register time, and is cached
// for the lifetime of the process.
type Registry struct {
	mu      sync.RWMutex
	bundles map[string]*Bundle
	steps   map[string]enumeratedSteps
}

// NewRegistry creates an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{
		bundles: make(map[string]*Bundle),
		steps:   make(map[string]enumeratedSteps),
	}
}

// Register adds bundle under hardware-type name, enumerating its steps by
// walking every exported interface-slot field that implements StepProvider.
// It returns ErrAlreadyRegistered if name is already taken.
func (r *Registry) Register(name string, bundle *Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bundles[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	bundle.Name = name
	r.bundles[name] = bundle
	r.steps[name] = enumerateSteps(bundle)
	return nil
}

// LoadDriver returns the Bundle registered under name.
func (r *Registry) LoadDriver(name string) (*Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bundle, exists := r.bundles[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDriverNotRegistered, name)
	}
	return bundle, nil
}

// ListHardwareTypes returns every registered hardware-type name, sorted.
func (r *Registry) ListHardwareTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.bundles))
	for name := range r.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeploySteps returns the cached, priority-sorted deploy step descriptors
// for the named hardware type.
func (r *Registry) DeploySteps(name string) ([]StepDescriptor, error) {
	return r.workflowSteps(name, func(s enumeratedSteps) []StepDescriptor { return s.deploy })
}

// CleanSteps returns the cached, priority-sorted clean step descriptors for
// the named hardware type.
func (r *Registry) CleanSteps(name string) ([]StepDescriptor, error) {
	return r.workflowSteps(name, func(s enumeratedSteps) []StepDescriptor { return s.clean })
}

// ServiceSteps returns the cached, priority-sorted service step descriptors
// for the named hardware type.
func (r *Registry) ServiceSteps(name string) ([]StepDescriptor, error) {
	return r.workflowSteps(name, func(s enumeratedSteps) []StepDescriptor { return s.service })
}

func (r *Registry) workflowSteps(name string, pick func(enumeratedSteps) []StepDescriptor) ([]StepDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.bundles[name]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrDriverNotRegistered, name)
	}
	steps := append([]StepDescriptor(nil), pick(r.steps[name])...)
	return steps, nil
}

// enumerateSteps reflects over bundle's exported fields, collecting the
// descriptors of every field that implements StepProvider, then sorts each
// workflow's list by descending priority with ties broken by discovery
// (struct field) order.
func enumerateSteps(bundle *Bundle) enumeratedSteps {
	var out enumeratedSteps

	v := reflect.ValueOf(bundle).Elem()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.Interface || !field.CanInterface() || field.IsNil() {
			continue
		}
		provider, ok := field.Interface().(StepProvider)
		if !ok {
			continue
		}
		out.deploy = append(out.deploy, provider.DeploySteps()...)
		out.clean = append(out.clean, provider.CleanSteps()...)
		out.service = append(out.service, provider.ServiceSteps()...)
	}

	sortByPriorityDesc(out.deploy)
	sortByPriorityDesc(out.clean)
	sortByPriorityDesc(out.service)
	return out
}

func sortByPriorityDesc(steps []StepDescriptor) {
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Priority > steps[j].Priority })
}
