// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements a local mock of the Egghead assistant backend.
//
// It serves the same wire contract as the production FastAPI service so the
// client can be developed and demoed without network access: POST /chat with
// keyword-routed UC Davis resource references, GET /health, and
// GET /resources. A legacy mode reproduces the older backend generation that
// returned its reply under the "response" key.
package server
