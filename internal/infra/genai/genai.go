// Package genai provides a resilient client for the generative-text
// backend.
//
// This package contains:
//   - credential.Pool: ordered API key pool with rotation, reloaded from
//     external configuration before every logical call
//   - routing: failure classification, backoff policy, and the call
//     executor that retries across keys
//   - Session: an HTTP transport bound to a single key
//   - Client: the model invocation layer with tier mapping and a
//     degraded-service fallback model
package genai
