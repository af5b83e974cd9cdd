package annot

import (
	"fmt"

	"github.com/remnrem/luna-core/tick"
)

// Instance is a single scored event: an interval tagged with an id, an
// optional channel, and a meta-value map. Its composite key for indexing is
// (Interval, class name, Channel, ID), lexicographically ordered in that
// sequence (SPEC_FULL.md §3).
type Instance struct {
	Class    *Class
	Interval tick.Interval
	ID       string
	Channel  string
	Meta     map[string]Value
}

// compositeKey is the uniqueness key for an Instance within a Store.
type compositeKey struct {
	iv      tick.Interval
	class   string
	channel string
	id      string
}

func keyOf(class string, iv tick.Interval, channel, id string) compositeKey {
	if channel == "" {
		channel = "."
	}
	if id == "" {
		id = "."
	}
	return compositeKey{iv: iv, class: class, channel: channel, id: id}
}

// less implements the lexicographic ordering (interval, class, channel, id)
// specified by SPEC_FULL.md §3.
func (k compositeKey) less(o compositeKey) bool {
	if k.iv != o.iv {
		return tick.Less(k.iv, o.iv)
	}
	if k.class != o.class {
		return k.class < o.class
	}
	if k.channel != o.channel {
		return k.channel < o.channel
	}
	return k.id < o.id
}

func (k compositeKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.iv, k.class, k.channel, k.id)
}
