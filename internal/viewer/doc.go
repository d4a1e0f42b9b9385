// Package viewer implements the secure document viewing session.
//
// A Session owns decrypted document bytes and renders them only while the
// user has explicitly entered secure mode. While armed, a scoped Monitor
// classifies environment events (copy, print, focus loss, resize) into
// violations. Each violation blurs the document for a cool-down window;
// reaching the policy limit ends the session after a grace delay.
//
// # States
//
//	Locked --EnterSecureMode--> Armed --violation--> Blurred
//	Blurred --cool-down, count < max--> Armed
//	Blurred --grace elapsed, count >= max--> Terminated
//	Armed|Blurred --ExitSecureMode--> Locked
//	any --Dispose--> Terminated
//
// # Deterrence, Not Prevention
//
// Screen capture cannot be prevented from inside an application: the
// operating system can always read the screen. The session therefore
// guarantees that repeated detected attempts degrade and then end access,
// and that every attempt is reported to the Observer for recording. It does
// not guarantee confidentiality against capture. DeterrenceNotice carries
// this wording for user-facing output.
//
// # Ownership
//
// The plaintext passed to Open belongs to the session. It is never returned
// to callers; Render is the only way it leaves the session. On termination
// the buffer is wiped and released.
package viewer
