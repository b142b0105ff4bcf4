package benchmarks

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"runtime/pprof"

	"github.com/rs/zerolog/log"
)

var (
	cpuprofile string
	memprofile string
	// stopProfiling finishes the profiles started by startProfiling
	stopProfiling = func() error { return nil }
)

// startProfiling starts the cpu profile, the heap profile is written when profiling stops.
// Profiles are stored in the save folder.
func startProfiling() error {
	stops := make([]func() error, 0, 2)
	if cpuprofile != "" || memprofile != "" {
		if err := os.MkdirAll(saveFile, os.ModePerm); err != nil {
			return err
		}
	}
	if cpuprofile != "" {
		cpuProfPath := path.Join(saveFile, cpuprofile)
		log.Info().Str("file", cpuProfPath).Msg("profiling cpu")
		f, err := os.Create(cpuProfPath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		stops = append(stops, func() error {
			pprof.StopCPUProfile()
			return f.Close()
		})
	}

	if memprofile != "" {
		memProfPath := path.Join(saveFile, memprofile)
		stops = append(stops, func() error {
			log.Info().Str("file", memProfPath).Msg("writing memory profile")
			f, err := os.Create(memProfPath)
			if err != nil {
				return fmt.Errorf("could not create memory profile: %w", err)
			}
			defer f.Close()
			runtime.GC() // get up-to-date statistics
			if err := pprof.WriteHeapProfile(f); err != nil {
				return fmt.Errorf("could not write memory profile: %w", err)
			}
			return nil
		})
	}

	stopProfiling = func() error {
		var firstErr error
		for _, stop := range stops {
			if err := stop(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		stopProfiling = func() error { return nil }
		return firstErr
	}
	return nil
}
