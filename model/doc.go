// Package model defines the provider-agnostic model contract and the Model
// Gateway that every ActionMesh component talks to.
//
// Core goals:
//   - Keep request/response shapes minimal: ordered role/text messages in,
//     text plus a stop reason out
//   - Surface truncation (StopReasonMaxTokens) so callers can flag incomplete output
//   - Retry rate-limited calls with bounded exponential backoff, nothing else
//   - Facilitate lightweight mocking for tests (MockProvider)
//
// Providers (Anthropic, OpenAI) implement Provider in sub-packages so higher
// layers remain decoupled from vendor SDKs.
package model
