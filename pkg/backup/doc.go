// Package backup exports the application slots to a single JSON snapshot and
// restores such a snapshot into a store.
//
// The flow mirrors the settings dialogs of the application:
//
//	svc := backup.NewService(store, backup.Config{Logger: logger})
//
//	// Export
//	exp, err := svc.Export(ctx)
//	defer exp.Handle.Release()
//
//	// Import
//	imp, err := svc.Validate(ctx, "catcare_backup_2025-08-01.json", r, true)
//	report, err := svc.Apply(ctx, imp, backup.ModeMerge)
//
// Validation never touches the store. Apply writes slot by slot: a failing
// slot is reported and skipped, it does not roll back the others.
package backup
