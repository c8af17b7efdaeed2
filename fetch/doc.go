// Package fetch provides Fetcher, a small blocking HTTP client for a single
// GET or form-encoded POST with a timeout-only retry policy.
//
// Retries
//   - Options.Retries is the total attempt budget; 0 means no request is sent.
//   - Only timeouts (client timeout, context.DeadlineExceeded, net.Error.Timeout) are retried,
//     after sleeping Options.RetryDelay. No delay follows the last attempt.
//   - Any response ends the loop. 200 stores the body and succeeds, 302 succeeds
//     without a body, every other status fails without retrying.
//   - Any non-timeout transport failure ends the loop immediately.
//
// TLS
//   - Options.InsecureSkipVerify defaults to true and accepts any certificate.
//     This is a deliberate compatibility default and a security risk; disable it
//     for anything that talks to untrusted networks.
//
// Decoding
//   - The stored body is decoded through a closed set of functions (DecodeText,
//     DecodeInt, ...) or the generic Decode/As over the Scalar constraint.
//     Failures are reported as *ConversionError naming the target type.
//
// Defaults
//   - There is no package-level mutable state. Factory holds defaults explicitly
//     and Fetchers snapshot them at construction.
package fetch
