// Package engine replays market data one trading day at a time and runs the
// configured rules against a ledger.
package engine

import (
	"time"
)

// Lifecycle callback types for simulation phases
// All callbacks with error return can abort execution if they return an error

// OnSimulationStartCallback is called once the market data is loaded, before the first day.
// runID is a unique identifier for this run, also stored in the result.
type OnSimulationStartCallback func(runID string, totalDays int, totalRules int) error

// OnDayCallback is called after every rule ran on a trading day.
type OnDayCallback func(current int, total int, day time.Time, value float64) error

// OnRuleFiredCallback is called each time a rule executes.
type OnRuleFiredCallback func(day time.Time, ruleName string) error

// OnSimulationEndCallback is called when the simulation completes (always called via defer).
type OnSimulationEndCallback func(err error)

// LifecycleCallbacks holds all lifecycle callback functions for the simulator.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnSimulationStart *OnSimulationStartCallback
	OnDay             *OnDayCallback
	OnRuleFired       *OnRuleFiredCallback
	OnSimulationEnd   *OnSimulationEndCallback
}
