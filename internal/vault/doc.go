// Package vault protects a stored username/password pair at rest.
//
// Credentials are serialized as "username\npassword", sealed with
// AES-256-GCM under a per-instance 32-byte key and written base64-encoded
// to cryptauth_{instance}.txt. The key lives next to it in
// cryptauth_{instance}_key.bin, or in the OS keychain when a
// KeyringKeyStore is used. Both halves are required to recover the
// credential; losing either means the user is prompted again.
//
// Load failures of any kind are reported as "not available" rather than as
// errors so the caller can fall back to interactive entry.
//
// Nothing here locks files. Two processes creating the same key at once
// race and the last writer wins.
package vault
