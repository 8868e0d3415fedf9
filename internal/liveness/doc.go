// Package liveness implements heartbeat ingestion and grid state
// inference.
//
// Edge reporter devices ping the backend periodically. A user's grid
// power is considered on while at least one of their devices has been
// heard from within the staleness threshold (120 seconds by default),
// and off otherwise. The engine is edge-triggered: only transitions
// between on and off are persisted and announced, so steady-state
// heartbeats and sweeps are silent.
//
// State changes are detected in two places that share one evaluation
// path: immediately on each heartbeat, and from a periodic sweep that
// catches devices which have gone quiet. Evaluations for a given user
// are serialised so the read-then-append sequence never races between
// a heartbeat and a concurrent sweep.
package liveness
