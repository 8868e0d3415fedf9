// Package auth provides user accounts and authentication for GridWatch Core.
//
// It implements a 2-tier role model (reporter → admin) with:
//   - Argon2id password hashing
//   - JWT HS256 access tokens carrying the role claim
//   - SQLite-backed user repository
//
// Reporters are the principals behind edge devices: a device heartbeat is
// authenticated with a reporter token whose subject is the owning user's
// username. Admins additionally manage accounts and read all data.
package auth
