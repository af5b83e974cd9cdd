package algebra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remnrem/luna-core/tick"
)

func iv(a, b uint64) tick.Interval { return tick.NewInterval(tick.Tick(a), tick.Tick(b)) }

func TestFlattenIdempotent(t *testing.T) {
	s := []tick.Interval{iv(0, 10), iv(5, 15), iv(20, 30)}
	once := Flatten(s)
	twice := Flatten(once)
	require.Equal(t, once, twice)
	require.Equal(t, []tick.Interval{iv(0, 15), iv(20, 30)}, once)
}

func TestUnionIdempotentUnderFlatten(t *testing.T) {
	a := []tick.Interval{iv(0, 10)}
	b := []tick.Interval{iv(5, 20)}
	u := Union(a, b)
	require.Equal(t, Flatten(u), u)
}

func TestDropIfOverlapsNeverOverlapsB(t *testing.T) {
	apnea := []tick.Interval{iv(0, 10), iv(50, 60), iv(100, 110)}
	rem := []tick.Interval{iv(5, 15), iv(100, 105)}
	diff := DropIfOverlaps(apnea, rem)
	for _, x := range diff {
		for _, y := range Flatten(rem) {
			require.False(t, x.Overlaps(y))
		}
	}
	require.Equal(t, []tick.Interval{iv(50, 60)}, diff)
}

func TestKeepIfOverlapsOnlyContainsOverlappers(t *testing.T) {
	// scenario 2 from spec.md §8
	apnea := []tick.Interval{iv(0, 10), iv(50, 60), iv(100, 110)}
	rem := []tick.Interval{iv(5, 15), iv(100, 105)}
	kept := KeepIfOverlaps(apnea, rem)
	require.Equal(t, []tick.Interval{iv(0, 10), iv(100, 110)}, kept)
	for _, x := range kept {
		found := false
		for _, y := range Flatten(rem) {
			if x.Overlaps(y) {
				found = true
			}
		}
		require.True(t, found)
	}
}

func TestComplement(t *testing.T) {
	s := []tick.Interval{iv(10, 20), iv(30, 40)}
	c := Complement(s, 50)
	require.Equal(t, []tick.Interval{iv(0, 10), iv(20, 30), iv(40, 50)}, c)
}

func TestReduceModes(t *testing.T) {
	s := []tick.Interval{iv(10, 20)}
	require.Equal(t, []tick.Interval{iv(10, 10)}, Reduce(s, ReduceStart))
	require.Equal(t, []tick.Interval{iv(20, 20)}, Reduce(s, ReduceStop))
	require.Equal(t, []tick.Interval{iv(15, 15)}, Reduce(s, ReduceMidpoint))
}

func TestWindowExpands(t *testing.T) {
	s := []tick.Interval{iv(10, 20)}
	w := Window(s, 5, 5)
	require.Equal(t, []tick.Interval{iv(5, 25)}, w)
}

func TestPoolUnionsAcrossClasses(t *testing.T) {
	a := []tick.Interval{iv(0, 10)}
	b := []tick.Interval{iv(5, 15)}
	c := []tick.Interval{iv(100, 110)}
	p := Pool(a, b, c)
	require.Equal(t, []tick.Interval{iv(0, 15), iv(100, 110)}, p)
}
