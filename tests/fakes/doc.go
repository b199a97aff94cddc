// Package fakes provides test doubles for external clients.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	fake := fakes.NewFakeKeyringClient()
//	keys := vault.NewKeyringKeyStoreWithClient("sapauto", fake)
//	store := vault.NewStore(dir, "rs", keys)
//	// Test store methods...
package fakes
