package domain

// BulkResult accumulates the outcome of one bulk delete batch.
// Counts are never decremented; Processed = Deleted + Failed holds after
// every attempt, so a mid-batch abort still reflects the items attempted.
type BulkResult struct {
	Processed int
	Deleted   int
	Failed    int
}

// RunTotals aggregates per-user identity batches across a whole
// organisation purge run.
type RunTotals struct {
	UsersProcessed      int
	IdentitiesProcessed int
	IdentitiesDeleted   int
	IdentitiesFailed    int
}

// AddUser folds one user's identity batch result into the running totals.
func (t *RunTotals) AddUser(res BulkResult) {
	t.UsersProcessed++
	t.IdentitiesProcessed += res.Processed
	t.IdentitiesDeleted += res.Deleted
	t.IdentitiesFailed += res.Failed
}
