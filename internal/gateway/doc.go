// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway is the boundary client for the Egghead chat backend.
//
// It formats the outbound /chat request, parses the inbound response, and
// normalizes the two reply field spellings ("response" and "reply") that
// different backend generations use. The shim is deliberate and permanent:
// both spellings exist in deployed backends.
//
// Chat calls are never retried and carry no auth headers. A non-success
// status or malformed body surfaces as one failure value with a
// human-readable message; the client never partially applies state.
package gateway
