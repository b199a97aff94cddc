// Package secure provides memory-safe handling of sensitive data.
//
// Decrypted vault passwords are kept in a memguard enclave between the
// moment the credential file is opened and the moment a caller consumes
// them. The enclave is:
//
//   - Encrypted at rest in memory (XSalsa20Poly1305)
//   - Protected from swapping via mlock
//   - Securely wiped when no longer needed
//
// # Usage
//
//	buf, err := secure.NewSecureString(password)
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	use(locked.Bytes())
//
// Call memguard.Purge() in a defer in main() for cleanup at exit.
//
// It does NOT protect against attackers with access to the running process
// or hardware-level attacks.
package secure
