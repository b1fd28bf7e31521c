// Package sourcemap turns a build's output listing into source map uploads
// and runs them concurrently against every destination the bundles are
// served from.
package sourcemap

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sofmeright/hbdeploy/src/artifact"
)

// State is the lifecycle of one upload task. Terminal states are final;
// there are no retries.
type State int

const (
	Pending State = iota
	InFlight
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Task is one (pair, destination) upload. Tasks are built once and never
// mutated.
type Task struct {
	ID          string
	PairIndex   int
	Pair        artifact.Pair
	Destination string
	MinifiedURL string
}

// Outcome records how a task ended.
type Outcome struct {
	Task    Task
	State   State
	Err     error
	Elapsed time.Duration
}

// Result aggregates every outcome of one dispatch. It succeeds iff every
// task succeeded; Err is the first failure observed.
type Result struct {
	Outcomes []Outcome
	Err      error
}

// OK reports whether the dispatch succeeded.
func (r *Result) OK() bool { return r.Err == nil }

// Count returns the number of outcomes in state s.
func (r *Result) Count(s State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}

// Plan builds the cartesian product of pairs and destinations, pair-major:
// every destination of the first pair, then of the second, and so on.
func Plan(pairs []artifact.Pair, destinations []string) []Task {
	tasks := make([]Task, 0, len(pairs)*len(destinations))
	for pi, p := range pairs {
		for _, dest := range destinations {
			tasks = append(tasks, Task{
				ID:          uuid.NewString(),
				PairIndex:   pi,
				Pair:        p,
				Destination: dest,
				MinifiedURL: MinifiedURL(dest, p.Bundle),
			})
		}
	}
	return tasks
}

// MinifiedURL is the production URL of a bundle: the destination prefix
// followed by the bundle's dist-relative path.
func MinifiedURL(destination, bundle string) string {
	return destination + filepath.ToSlash(bundle)
}
