// Package statsview optionally serves live runtime statistics (heap, GC,
// goroutines) and pprof endpoints over HTTP while the emulator runs. It is
// only functional when built with the statsview build tag:
//
//	go build -tags statsview ./cmd/dmg
//
// Once launched, charts are at localhost:12600/debug/statsview and pprof at
// localhost:12600/debug/pprof/.
package statsview
