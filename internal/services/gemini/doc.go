// Package gemini talks to the Gemini generateContent REST API for text
// translation and single-speaker speech synthesis.
//
// The client is deliberately small: one request shape, one response shape,
// and a shared retry loop. Retries cover request timeouts, 429 rate limits,
// and 5xx responses, honoring Retry-After when the server sends it. Every
// other status fails immediately.
//
// Synthesized speech comes back as base64 PCM (24 kHz, mono, signed 16-bit
// little-endian); WriteWAV wraps it in a RIFF header so ffmpeg and the
// transcriber can read it.
//
// Tests point BaseURL at an httptest server and inject a sleeper so retry
// delays do not slow the suite.
package gemini
