// Package jobs implements background work for the PetzAdopt API.
//
// Jobs run on a ticker independently of HTTP request handling and follow
// one lifecycle:
//
//	job := jobs.NewLedgerReconciler(jobs.LedgerReconcilerConfig{...})
//	job.Start()
//	defer job.Stop()
//
// RunOnce performs a single pass and is what tests and the CLI call.
//
// # Error Handling
//
// Jobs log errors but don't crash the application. Failed work is retried
// on the next tick.
package jobs
