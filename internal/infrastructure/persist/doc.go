// Package persist is the local persistence layer of the desktop.
//
// OpenDB opens the SQLite database (modernc.org/sqlite, pure Go) shared by
// every collaborator and applies the schema. Store is a namespaced key/value
// store with SQL and in-memory implementations. Local wraps a Store for one
// desktop owner, encodes values as JSON and never fails the caller. Debouncer
// coalesces bursts of writes so only the last value per key is written.
//
//	db, err := persist.OpenDB(cfg.Storage.DatabasePath())
//	local := persist.NewLocal(persist.NewSQLStore(db), userID, time.Second, logger)
//	local.SaveDebounced(persist.KeyNotepadContent, text)
//	defer local.Close()
package persist
