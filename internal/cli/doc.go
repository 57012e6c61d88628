// Package cli provides the interactive operator console of the sign-out
// system.
//
// A session starts by authenticating a supervisor against the credential
// vault, then runs a REPL over the ledger. Every command that changes state
// (new, edit, signin, backup and the ds administration commands) asks for a
// supervisor PIN again before it runs; the supervisor defaults to the one
// signed in.
//
// The console is started with App.Run, which blocks until the operator exits
// or the startup PIN attempts are exhausted.
package cli
