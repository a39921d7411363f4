// Package errx provides structured, code-based errors for nexus-pusher.
//
// Every error carries:
//   - a stable 5-digit code whose first two digits name the domain
//   - the category description registered for that code
//   - a user-facing message
//   - optional structured context (key/value pairs)
//   - an optional cause and an optional base sentinel
//
// Domains:
//   - 70xxx: CLI and input validation errors
//   - 71xxx: container tool availability errors
//   - 72xxx: registry errors (login, push)
//   - 73xxx: external command execution errors
//   - 74xxx: pipeline orchestration errors
//   - 79xxx: configuration errors
//
// The last three digits are reserved for subcodes.
//
// Example usage:
//
//	err := errx.WrapCommand("pull failed", cause).
//		WithContext("command", "docker pull nginx:latest").
//		WithBase(relay.ErrCommandFailed)
//
//	if errors.Is(err, relay.ErrCommandFailed) {
//		// handle
//	}
//
//	fmt.Println(errx.UserString(err))  // message only
//	fmt.Println(errx.DebugString(err)) // codes, context and chain
package errx
