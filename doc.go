// Package portage serializes Go interface values so they can be sent
// between invocations of the same binary — forked workers, re-exec'd
// subprocesses, or identical executables on other machines — and come back
// as live, callable interface values.
//
// This package contains:
//   - Shape-specialized Serialize/Deserialize entry points
//   - The wire envelope protocol for dynamic-dispatch values
//   - Box, Rc and Arc ownership wrappers that apply the protocol
//     automatically and nest inside ordinary serializable structs
//
// An interface value is a (data pointer, dispatch pointer) pair. The data
// travels as ordinary codec output; the dispatch pointer travels as an
// offset from a fixed anchor (package relative), validated on arrival by a
// build fingerprint (package buildid) and type fingerprints (package
// fingerprint).
//
// # Trust boundary
//
// Decoding a dynamic-dispatch value must learn the concrete type's layout
// from the resolved dispatch pointer before the recorded concrete-type
// fingerprint can be checked, because checking requires a decoded value to
// exist. The resolved pointer is therefore trusted provisionally for
// exactly that step. Build and interface fingerprints are validated first,
// which closes the gap under non-malicious conditions; an attacker holding
// a copy of the binary is explicitly outside the threat model. If the
// post-decode fingerprint check ever fails, a possibly mis-sized dispatch
// table has already shaped live memory, so the failure is a panic rather
// than an error.
package portage
