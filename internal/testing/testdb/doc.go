// Package testdb gives integration tests a real, migrated SurrealDB.
//
//	func TestLedger(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewLedgerRepository(tdb.DB)
//	    ...
//	}
//
// Each TestDB lives in a namespace of its own, so tests may run in parallel.
// The namespace is dropped when the test finishes.
//
// TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER and TEST_DB_PASSWORD select the
// server (default root:root@localhost:8000). When it is unreachable New
// skips the test, so `go test ./...` passes without a database.
//
// The schema is read from migrations/, found by walking up from the test's
// package directory or under PETZADOPT_ROOT.
package testdb
