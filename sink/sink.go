// Package sink defines the output-writer collaborator the core emits
// results through (spec.md §6): the core only ever calls Level/Value/
// Epoch/Unepoch/Unlevel, and never inspects what's written back out.
package sink

// Writer receives stratified key/value output. Level pushes a
// stratifier (e.g. "E" for epoch-level, "CH" for channel), Value emits
// one named result under the current stratification, and Epoch/Unepoch
// bracket a per-epoch block the way Unlevel closes out a Level.
type Writer interface {
	Level(key, strat string)
	Value(key string, v any)
	Epoch(e int)
	Unepoch()
	Unlevel(strat string)
}
