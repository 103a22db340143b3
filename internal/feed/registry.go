package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dwsmith1983/feedwatch/pkg/types"
	"gopkg.in/yaml.v3"
)

// Registry maps feed names to descriptors. Registration order is kept so
// listings are stable.
type Registry struct {
	loc         *time.Location
	descriptors map[string]types.Descriptor
	order       []string
}

// descriptorFile is the YAML shape of a feed definition.
type descriptorFile struct {
	Name     string       `yaml:"name"`
	Category string       `yaml:"category"`
	ETA      string       `yaml:"eta"`
	Checks   yaml.Node `yaml:"checks"`
}

// NewRegistry creates an empty registry. ETAs of loaded files are placed in loc.
func NewRegistry(loc *time.Location) *Registry {
	if loc == nil {
		loc = time.Local
	}
	return &Registry{
		loc:         loc,
		descriptors: make(map[string]types.Descriptor),
	}
}

// Register adds or replaces a descriptor.
func (r *Registry) Register(d types.Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("feed has no name")
	}
	if _, ok := r.descriptors[d.Name]; !ok {
		r.order = append(r.order, d.Name)
	}
	r.descriptors[d.Name] = cloneDescriptor(d)
	return nil
}

// Get returns a copy of the descriptor for name.
func (r *Registry) Get(name string) (types.Descriptor, error) {
	d, ok := r.descriptors[name]
	if !ok {
		return types.Descriptor{}, fmt.Errorf("%w: %s", ErrUnsupportedFeed, name)
	}
	return cloneDescriptor(d), nil
}

// Names lists registered feeds in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// List returns every registered descriptor in registration order.
func (r *Registry) List() []types.Descriptor {
	out := make([]types.Descriptor, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, cloneDescriptor(r.descriptors[n]))
	}
	return out
}

// LoadDir loads all YAML feed files from a directory.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading feed dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		path := filepath.Join(dir, name)
		if err := r.LoadFile(path); err != nil {
			return fmt.Errorf("loading feed %s: %w", path, err)
		}
	}
	return nil
}

// LoadFile loads a single feed YAML file. Check collections are not
// validated here; a malformed or incomplete feed evaluates to EXCEPTION.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var f descriptorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if f.Name == "" {
		return fmt.Errorf("feed in %s has no name", path)
	}

	eta, err := ParseETA(f.ETA, r.loc)
	if err != nil {
		return fmt.Errorf("feed %s: %w", f.Name, err)
	}

	checks, err := decodeChecks(&f.Checks)
	if err != nil {
		return fmt.Errorf("feed %s: checks: %w", f.Name, err)
	}

	return r.Register(types.Descriptor{
		Name:        f.Name,
		Category:    f.Category,
		Checks:      checks,
		ETA:         f.ETA,
		ExpectedETA: eta,
	})
}

// decodeChecks decodes the checks mapping. An inProgress key that is present
// but null or empty decodes to an empty, non-nil collection so that only an
// absent key reads as missing. A null or absent pending key means the feed
// has no pending stage.
func decodeChecks(node *yaml.Node) (types.Checks, error) {
	var checks types.Checks
	if node.Kind == 0 {
		return checks, nil
	}
	if err := node.Decode(&checks); err != nil {
		return types.Checks{}, err
	}
	if hasKey(node, "inProgress") && checks.InProgress == nil {
		checks.InProgress = []types.CheckGroup{}
	}
	if len(checks.Pending) == 0 {
		checks.Pending = nil
	}
	return checks, nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func cloneDescriptor(d types.Descriptor) types.Descriptor {
	d.Checks = types.Checks{
		Error:      cloneGroups(d.Checks.Error),
		Completion: cloneGroups(d.Checks.Completion),
		InProgress: cloneGroups(d.Checks.InProgress),
		Pending:    cloneGroups(d.Checks.Pending),
	}
	return d
}

// cloneGroups keeps nil as nil: a nil pending collection means "no pending".
func cloneGroups(groups []types.CheckGroup) []types.CheckGroup {
	if groups == nil {
		return nil
	}
	out := make([]types.CheckGroup, len(groups))
	for i, g := range groups {
		out[i] = types.CheckGroup{
			RunGroup: g.RunGroup,
			RunNames: append([]string(nil), g.RunNames...),
		}
	}
	return out
}
