package annot

import (
	"sort"

	"github.com/remnrem/luna-core/internal/errs"
)

// Class is an annotation class: a named event type, the declared
// ValueTypes of its meta variables, and its ordered collection of
// instances. Class names are unique within a Set (enforced by Store.Add).
type Class struct {
	Name        string
	Description string
	Types       map[string]ValueType
	File        string

	instances []*Instance
	byKey     map[compositeKey]*Instance

	index  IntervalIndex
	sealed bool // set on first Extract/ExtractFullyContained query
}

func newClass(name string) *Class {
	return &Class{
		Name:  name,
		Types: map[string]ValueType{},
		byKey: map[compositeKey]*Instance{},
	}
}

// Sealed reports whether this class has been queried (and must not be
// mutated further).
func (c *Class) Sealed() bool { return c.sealed }

// assertUnsealed returns a StateError if the class has already been sealed
// by a prior query, per the interval-tree rebuild invariant
// (SPEC_FULL.md §9).
func (c *Class) assertUnsealed() error {
	if c.sealed {
		return errs.New(errs.StateError, "annot: mutation of class", c.Name, "after first interval-tree query")
	}
	return nil
}

// add is idempotent on the composite key: it returns the pre-existing
// instance if present, otherwise inserts and returns a new one.
func (c *Class) add(inst *Instance) (*Instance, error) {
	if err := c.assertUnsealed(); err != nil {
		return nil, err
	}
	if inst.Interval.Stop < inst.Interval.Start {
		return nil, errs.New(errs.ConstraintViolation, "annot: stop < start for", c.Name)
	}
	k := keyOf(c.Name, inst.Interval, inst.Channel, inst.ID)
	if existing, ok := c.byKey[k]; ok {
		return existing, nil
	}
	c.byKey[k] = inst
	c.instances = append(c.instances, inst)
	return inst, nil
}

// remove is a no-op if the key is absent.
func (c *Class) remove(iv Instance) error {
	if err := c.assertUnsealed(); err != nil {
		return err
	}
	k := keyOf(c.Name, iv.Interval, iv.Channel, iv.ID)
	existing, ok := c.byKey[k]
	if !ok {
		return nil
	}
	delete(c.byKey, k)
	for i, inst := range c.instances {
		if inst == existing {
			c.instances = append(c.instances[:i], c.instances[i+1:]...)
			break
		}
	}
	return nil
}

// seal builds the lazy interval index, if not already built, and marks the
// class immutable from this point on.
func (c *Class) seal() {
	if c.sealed {
		return
	}
	c.index.build(c.instances)
	c.sealed = true
}

// Instances returns the class's instances in insertion order.
func (c *Class) Instances() []*Instance {
	out := make([]*Instance, len(c.instances))
	copy(out, c.instances)
	return out
}

// Empty reports whether the class currently owns no instances.
func (c *Class) Empty() bool { return len(c.instances) == 0 }

// sortedClassNames is a helper used by Store.Names to produce deterministic
// output.
func sortedClassNames(classes map[string]*Class) []string {
	names := make([]string, 0, len(classes))
	for n := range classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
