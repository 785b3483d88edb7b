// Package table flattens parsed strategy states into the ordered entry table
// consumed by the runtime controller.
package table

import "github.com/KromDaniel/shieldgen/internal/strategy"

// MaxObsCap bounds the obstacle indices that are looked up in a state.
const MaxObsCap = 100

// Variable paths read from a state.
const (
	cpsKey      = "cps_state"
	obsKey      = "obs_state"
	positionKey = "position"
	phaseKey    = "phase"
	countKey    = "count"
)

// Position is a planar coordinate.
type Position struct {
	X, Y int
}

// Snapshot is the continuous state of the controlled car or of an obstacle.
type Snapshot struct {
	Position     Position
	Velocity     int
	Orientation  int
	Acceleration int
}

// IndexedSnapshot is an obstacle snapshot with its obs_state index.
type IndexedSnapshot struct {
	Index    int
	Snapshot Snapshot
}

// ExtractCPS reads cps_state.{position.x,position.y,vel,head,acc}. Missing leaves are 0.
func ExtractCPS(vars *strategy.Tree) Snapshot {
	return extractSnapshot(vars, cpsKey)
}

// ExtractObstacles reads obs_state[i] for i in [0, limit) in ascending order.
// Indices without an obs_state[i] entry are skipped.
func ExtractObstacles(vars *strategy.Tree, limit int) []IndexedSnapshot {
	var out []IndexedSnapshot
	for i := 0; i < limit; i++ {
		key := strategy.IndexedKey(obsKey, i)
		if !vars.Has(key) {
			continue
		}
		out = append(out, IndexedSnapshot{Index: i, Snapshot: extractSnapshot(vars, key)})
	}
	return out
}

func extractSnapshot(vars *strategy.Tree, root string) Snapshot {
	return Snapshot{
		Position: Position{
			X: vars.Int(0, root, positionKey, "x"),
			Y: vars.Int(0, root, positionKey, "y"),
		},
		Velocity:     vars.Int(0, root, "vel"),
		Orientation:  vars.Int(0, root, "head"),
		Acceleration: vars.Int(0, root, "acc"),
	}
}
