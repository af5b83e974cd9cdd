package edf

import (
	"github.com/remnrem/luna-core/tick"
)

// Fake is an in-memory Source used by tests that need a collaborator but not
// a real EDF container.
type Fake struct {
	EpochLen    tick.Tick
	NumEpochs   int
	IsContinuous bool

	signals []string
	freq    map[string]int
	samples map[string][]float64

	cursor int
}

// NewFake returns a Fake with epochLen-second epochs and n epochs total.
func NewFake(epochLen tick.Tick, n int) *Fake {
	return &Fake{
		EpochLen:     epochLen,
		NumEpochs:    n,
		IsContinuous: true,
		freq:         map[string]int{},
		samples:      map[string][]float64{},
		cursor:       -1,
	}
}

// AddSignal registers signal sampled at hz, with the given physical values
// spanning the whole recording.
func (f *Fake) AddSignal(label string, hz int, values []float64) {
	if !f.HasSignal(label) {
		f.signals = append(f.signals, label)
	}
	f.freq[label] = hz
	f.samples[label] = values
}

func (f *Fake) FirstEpoch() int {
	if f.NumEpochs == 0 {
		f.cursor = -1
		return -1
	}
	f.cursor = 0
	return 0
}

func (f *Fake) NextEpoch() int {
	if f.cursor < 0 || f.cursor+1 >= f.NumEpochs {
		f.cursor = -1
		return -1
	}
	f.cursor++
	return f.cursor
}

func (f *Fake) Epoch(i int) tick.Interval {
	start := tick.Tick(int64(i) * int64(f.EpochLen))
	return tick.NewInterval(start, start+f.EpochLen)
}

func (f *Fake) SamplingFreq(signal string) int { return f.freq[signal] }

func (f *Fake) NSamplesPerEpoch(signal string) int {
	return f.freq[signal] * int(f.EpochLen.ToSeconds())
}

func (f *Fake) Read(signal string, iv tick.Interval) ([]float64, error) {
	if !f.HasSignal(signal) {
		return nil, ErrNoSignal{Signal: signal}
	}
	hz := f.freq[signal]
	all := f.samples[signal]
	startIdx := int(iv.Start.ToSeconds() * float64(hz))
	stopIdx := int(iv.Stop.ToSeconds() * float64(hz))
	if startIdx < 0 {
		startIdx = 0
	}
	if stopIdx > len(all) {
		stopIdx = len(all)
	}
	if startIdx >= stopIdx {
		return nil, nil
	}
	out := make([]float64, stopIdx-startIdx)
	copy(out, all[startIdx:stopIdx])
	return out, nil
}

func (f *Fake) Resample(signal string, hz int) error {
	if !f.HasSignal(signal) {
		return ErrNoSignal{Signal: signal}
	}
	f.freq[signal] = hz
	return nil
}

func (f *Fake) Rescale(signal, unit string) error {
	if !f.HasSignal(signal) {
		return ErrNoSignal{Signal: signal}
	}
	return nil
}

func (f *Fake) HasSignal(name string) bool {
	for _, s := range f.signals {
		if s == name {
			return true
		}
	}
	return false
}

func (f *Fake) SignalLabel(i int) string {
	if i < 0 || i >= len(f.signals) {
		return ""
	}
	return f.signals[i]
}

func (f *Fake) Continuous() bool { return f.IsContinuous }

func (f *Fake) Seconds() float64 { return float64(f.NumEpochs) * f.EpochLen.ToSeconds() }
