package sink

// Record is one Value call captured by Fake, along with the stratum
// key/value pairs and epoch (if any) that were active at the time.
type Record struct {
	Strata map[string]string
	Epoch  int
	InEpoch bool
	Key    string
	Value  any
}

// Fake is an in-memory Writer for tests elsewhere in this repository:
// it never renders anything, it just records every Value call with the
// stratification active at the time, so a test can assert on exactly
// what the core emitted without parsing tabular text.
type Fake struct {
	levels  []stratum
	epoch   int
	inEpoch bool
	Records []Record
}

func NewFake() *Fake { return &Fake{} }

func (f *Fake) Level(key, strat string) {
	f.levels = append(f.levels, stratum{key: key, strat: strat})
}

func (f *Fake) Unlevel(strat string) {
	for i := len(f.levels) - 1; i >= 0; i-- {
		if f.levels[i].strat == strat {
			f.levels = append(f.levels[:i], f.levels[i+1:]...)
			return
		}
	}
}

func (f *Fake) Epoch(e int) {
	f.epoch = e
	f.inEpoch = true
}

func (f *Fake) Unepoch() {
	f.inEpoch = false
}

func (f *Fake) Value(key string, v any) {
	strata := make(map[string]string, len(f.levels))
	for _, s := range f.levels {
		strata[s.strat] = s.key
	}
	f.Records = append(f.Records, Record{
		Strata:  strata,
		Epoch:   f.epoch,
		InEpoch: f.inEpoch,
		Key:     key,
		Value:   v,
	})
}

// Find returns the value of the first record matching key under the
// given stratum/key-value constraint, and whether one was found. Tests
// use this instead of indexing Records directly so they stay robust to
// emission order.
func (f *Fake) Find(key string, strata map[string]string) (any, bool) {
	for _, r := range f.Records {
		if r.Key != key {
			continue
		}
		if matchesStrata(r.Strata, strata) {
			return r.Value, true
		}
	}
	return nil, false
}

func matchesStrata(got, want map[string]string) bool {
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}
