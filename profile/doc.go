// Package profile wraps [github.com/pkg/profile] for the scenec command.
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	scenec build --pprof-mode cpu --pprof-dir ./prof scene.yaml -o scene.json
//	go tool pprof ./prof/cpu.pprof
//
// Without the tag, [Profiler.Start] returns a no-op handle and [Modes] is
// empty.
package profile
