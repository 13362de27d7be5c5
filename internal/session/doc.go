// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates sending a user message: input validation,
// lazy conversation creation, the optimistic user append, the backend call,
// and the assistant (or recovered error) append.
//
// A session admits one in-flight send at a time. The loading flag is the
// only cross-phase coordination signal; callers disable their input while
// it is set. The per-send state machine is Idle -> Sending -> Idle, with
// no retries and no cancellation of an issued request.
package session
