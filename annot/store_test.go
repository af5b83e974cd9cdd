package annot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remnrem/luna-core/tick"
)

func TestAddIdempotentOnCompositeKey(t *testing.T) {
	s := NewStore(Options{})
	iv := tick.NewInterval(0, tick.Seconds(30))
	a, err := s.Add("stg", "A", iv, ".")
	require.NoError(t, err)
	b, err := s.Add("stg", "A", iv, ".")
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Len(t, s.Class("stg").Instances(), 1)
}

func TestRemoveNoopIfAbsent(t *testing.T) {
	s := NewStore(Options{})
	require.NoError(t, s.Remove("nope", "x", tick.NewInterval(0, 1), "."))
}

func TestExtractHalfOpenBoundary(t *testing.T) {
	// Scenario 1 from spec.md §8: two instances of class "stg", extract a
	// window overlapping both.
	s := NewStore(Options{})
	ivA := tick.NewInterval(0, tick.Seconds(30))
	ivB := tick.NewInterval(tick.Seconds(30), tick.Seconds(60))
	_, err := s.Add("stg", "A", ivA, ".")
	require.NoError(t, err)
	instB, err := s.Add("stg", "B", ivB, ".")
	require.NoError(t, err)
	instB.Meta["v"] = NewNum(1.5)

	window := tick.NewInterval(tick.Seconds(20), tick.Seconds(40))
	hits := s.Extract(window)
	require.Len(t, hits["stg"], 2)

	// boundary law: [a,b) is in extract([b,c)) iff a<c && b>b, i.e. never
	// included in a window starting at its own stop.
	atStop := tick.NewInterval(ivA.Stop, ivA.Stop+tick.Seconds(10))
	hits2 := s.Extract(atStop)
	for _, inst := range hits2["stg"] {
		require.NotEqual(t, ivA, inst.Interval)
	}
}

func TestMutationAfterSealIsFatal(t *testing.T) {
	s := NewStore(Options{})
	iv := tick.NewInterval(0, tick.Seconds(30))
	_, err := s.Add("stg", "A", iv, ".")
	require.NoError(t, err)

	// seal the class via a query
	s.Extract(tick.NewInterval(0, tick.Seconds(30)))

	_, err = s.Add("stg", "B", iv, ".")
	require.Error(t, err)
}

func TestIntervalIndexSizeMatchesInstanceCountAfterBuild(t *testing.T) {
	s := NewStore(Options{})
	for i := 0; i < 5; i++ {
		iv := tick.NewInterval(tick.Tick(i)*tick.Seconds(30), tick.Tick(i+1)*tick.Seconds(30))
		_, err := s.Add("stg", "x", iv, ".")
		require.NoError(t, err)
	}
	c := s.Class("stg")
	require.False(t, c.index.Built())
	s.Extract(tick.NewInterval(0, tick.Seconds(150)))
	require.True(t, c.index.Built())
	require.Equal(t, len(c.Instances()), c.index.Len())
}

func TestCleanDropsEmptyClasses(t *testing.T) {
	s := NewStore(Options{})
	s.classFor("empty")
	_, err := s.Add("nonempty", "a", tick.NewInterval(0, 1), ".")
	require.NoError(t, err)
	s.Clean()
	require.NotContains(t, s.Names(), "empty")
	require.Contains(t, s.Names(), "nonempty")
}
