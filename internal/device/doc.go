// Package device provides persistence for edge reporter devices.
//
// A device is one physical edge unit, keyed by its hardware (MAC-style)
// address. Records are created on the first heartbeat from an unseen
// address and mutated in place on every subsequent heartbeat; the engine
// never deletes them. The store supports point lookup by address,
// create-or-replace upsert, and a full scan with owner resolution for
// the periodic liveness sweep.
package device
