// Package vault implements the supervisor credential vault: an encrypted file
// mapping supervisor identifiers (display names such as "DS Smith") to the
// SHA-256 digest of their PIN.
//
// # File format
//
//	salt (16 bytes) || Fernet token (URL-safe base64, rest of the file)
//
// The Fernet key is PBKDF2-HMAC-SHA256(passphrase, salt, 100000 iterations,
// 32 bytes). The decrypted payload is a JSON object whose key order is the
// order in which identifiers were first added. A new salt is drawn on every
// write, so two writes of the same roster never produce the same bytes.
//
// # Operations
//
// EnsureInitialized creates the file with the default roster when it does not
// exist and never touches an existing file. Verify and ListIDs never fail:
// a missing, corrupt or tampered file reads as an empty roster. Add, Remove and
// ChangePIN return sentinel errors; a file that cannot be decrypted aborts the
// mutation instead of being rewritten. Failure details go to the Logger passed
// with WithLogger.
//
// # Concurrency
//
// Every call reads and decrypts the whole file; nothing is cached. Writes go
// through a temporary file and an atomic rename, but there is no locking:
// two processes (or goroutines) mutating the same vault concurrently race and
// the last writer wins. The console runs a single operator session, which is
// the only supported deployment.
package vault
