// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Handlers write every response through these helpers so the JSON envelope
// ({"error": ..., "details": ...} on failure) is identical across endpoints.
package httputil
