// Package session houses implementations of core.HistoryStore. The interface
// lives in core so the wiring layer alone decides which backend to use.
//
// Histories are append-only: messages are never edited or reordered, and
// readers always receive copies.
package session
