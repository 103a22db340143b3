package feed

import (
	"errors"
	"fmt"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// Descriptor configuration errors.
var (
	ErrUnsupportedFeed = errors.New("unsupported feed")
	ErrMissingChecks   = errors.New("missing required check collection")
	ErrMalformedChecks = errors.New("malformed check collection")
)

// Validate reports whether d can be evaluated. The returned kind tags the
// failure for callers that map configuration errors to a status.
func Validate(d types.Descriptor) (types.FailureKind, error) {
	if len(d.Checks.Completion) == 0 {
		return types.FailureMissingConfig, fmt.Errorf("feed %s: %w: completion", d.Name, ErrMissingChecks)
	}
	if d.Checks.InProgress == nil {
		return types.FailureMissingConfig, fmt.Errorf("feed %s: %w: inProgress", d.Name, ErrMissingChecks)
	}
	if d.ExpectedETA == nil {
		return types.FailureMalformedConfig, fmt.Errorf("feed %s: %w: no expected eta", d.Name, ErrMalformedChecks)
	}

	collections := []struct {
		name   string
		groups []types.CheckGroup
	}{
		{"error", d.Checks.Error},
		{"completion", d.Checks.Completion},
		{"inProgress", d.Checks.InProgress},
		{"pending", d.Checks.Pending},
	}
	for _, c := range collections {
		for i, g := range c.groups {
			if err := validateGroup(g); err != nil {
				return types.FailureMalformedConfig, fmt.Errorf("feed %s: %w: %s[%d]: %v", d.Name, ErrMalformedChecks, c.name, i, err)
			}
		}
	}
	return types.FailureNone, nil
}

func validateGroup(g types.CheckGroup) error {
	if g.RunGroup == "" {
		return errors.New("empty run group")
	}
	if len(g.RunNames) == 0 {
		return fmt.Errorf("run group %s has no run names", g.RunGroup)
	}
	for _, n := range g.RunNames {
		if n == "" {
			return fmt.Errorf("run group %s has an empty run name", g.RunGroup)
		}
	}
	return nil
}
