// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns the saved conversation list and the active
// conversation id, and persists the whole state to local disk.
//
// # Persistence model
//
// The full state serializes to one JSON file (egghead-conversations.json)
// on every mutation, write-through with no batching. Loading fails soft:
// a missing or corrupt file initializes empty state and never surfaces an
// error. Saving is best-effort with no durability guarantee.
//
// # Key Operations
//
//	st := store.New(dataDir)
//	st.Load()
//	id := st.Create("What are the library hours?")
//	st.Append(id, msg)
//	st.Delete(id)
//
// Watch reloads the state when another process rewrites the file, the
// local-disk analog of cross-tab storage events in the original web client.
package store
