package calendar

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// Registry holds named holiday calendars. A calendar is compiled into its
// HolidaySource when it is added, so a registry never holds a definition
// that cannot be evaluated.
type Registry struct {
	defs    map[string]*types.HolidayCalendar
	sources map[string]*HolidaySource
}

// NewRegistry creates an empty calendar registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:    make(map[string]*types.HolidayCalendar),
		sources: make(map[string]*HolidaySource),
	}
}

// LoadDir adds every *.yaml and *.yml calendar in dir. Subdirectories are
// not searched.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading calendar dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile adds the calendar defined in path. Unknown keys, weekdays and
// malformed dates are rejected here rather than at lookup time.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("calendar %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var def types.HolidayCalendar
	if err := dec.Decode(&def); err != nil {
		return fmt.Errorf("calendar %s: parsing YAML: %w", path, err)
	}
	if def.Name == "" {
		return fmt.Errorf("calendar %s: no name", path)
	}
	if err := r.Register(&def); err != nil {
		return fmt.Errorf("calendar %s: %w", path, err)
	}
	return nil
}

// Register compiles def and adds it, replacing any calendar of the same name.
func (r *Registry) Register(def *types.HolidayCalendar) error {
	if def.Name == "" {
		return fmt.Errorf("calendar has no name")
	}
	src, err := NewHolidaySource(def)
	if err != nil {
		return err
	}
	r.defs[def.Name] = def
	r.sources[def.Name] = src
	return nil
}

// Get returns the definition of a calendar, or nil if none is registered.
func (r *Registry) Get(name string) *types.HolidayCalendar {
	return r.defs[name]
}

// Names returns the registered calendar names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.defs))
}

// Source returns the business-day source for a named calendar.
func (r *Registry) Source(name string) (*HolidaySource, error) {
	src, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown calendar %q", name)
	}
	return src, nil
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
