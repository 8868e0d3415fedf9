// Package reading provides persistence for grid state readings.
//
// A reading is one point in a user's grid power timeline: the inferred
// state (on or off) and the instant it was inferred. The engine appends
// a reading only when the inferred state differs from the most recent
// one, so the table is a change log rather than a sample stream.
package reading
