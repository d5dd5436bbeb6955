// Package assistant talks to OpenAI-compatible chat completion APIs.
//
// Two clients are built from the same [Client] type:
//
//   - the chat assistant answers text questions ([Client.Chat]); by default
//     it uses Groq's llama-3.3-70b-versatile
//   - the visual assistant answers questions about a PNG of the board
//     ([Client.Analyze]); by default it uses Gemini through Google's
//     OpenAI-compatible endpoint
//
// Both send POST {base_url}/chat/completions with a bearer token. Transport
// failures and 5xx responses are retried with exponential backoff; see
// [httputil.Retry]. Errors carry pkg/errors codes so the HTTP layer can map
// them to status codes: NETWORK_ERROR, RATE_LIMITED, UNAUTHORIZED and
// INTERNAL_ERROR (a response without choices).
//
// Chat responses can be cached with [Client.WithCache]. Vision responses are
// never cached because the board changes between questions.
package assistant
