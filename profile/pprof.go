//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"
)

// Enabled reports whether profiling is compiled in.
const Enabled = true

// Modes returns the supported profiling modes in sorted order.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Option adds a setting to a pkg/profile invocation.
type Option func([]func(*profile.Profile)) []func(*profile.Profile)

func withMode(m string) Option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if fn, ok := mode[m]; ok {
			o = append(o, fn)
		}

		return o
	}
}

func withPath(p string) Option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if p != "" {
			o = append(o, profile.ProfilePath(p))
		}

		return o
	}
}

func withQuiet(v bool) Option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if v {
			o = append(o, profile.Quiet)
		}

		return o
	}
}

func start(p Profiler) interface{ Stop() } {
	o := withMode(p.Mode)(nil)
	if len(o) == 0 {
		return ignore{}
	}

	for _, opt := range []Option{withPath(p.Path), withQuiet(p.Quiet)} {
		o = opt(o)
	}

	// Each mode records into its own file: cpu.pprof, mem.pprof, etc.
	// NoShutdownHook leaves signal handling to the caller.
	return profile.Start(append(o, profile.NoShutdownHook)...)
}
