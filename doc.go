// Package catcare is the composition root of the CatCare local-state engine.
//
// CatCare keeps the application state of a pet-care companion (pets, tasks,
// settings, notification and guest preferences, avatar, user profile) as a
// set of named string slots in a pluggable store, and moves that state in and
// out as portable JSON backups.
//
// Features:
//
//   - **Pluggable Storage**: filesystem (one file per slot), SQLite, or memory, via `core.Store`.
//   - **Snapshot Export**: allow-listed slots, inline avatars stripped, dated file names.
//   - **Validated Import**: file type, JSON shape, recognized keys and ownership are checked before anything is written.
//   - **Merge or Replace**: sequences merge by record id, mappings shallow-merge, and a failing slot does not abort the rest.
//   - **Typed Access**: generic `Slot[T]` and `Collection[T]` wrappers for pets, tasks and settings.
//
// Usage:
//
//	svc, err := catcare.New("./data",
//		catcare.WithAdapter("sqlite"),
//		catcare.WithLogger(logger),
//	)
//
//	imp, err := svc.Validate(ctx, "catcare_backup_2024-01-01.json", file, true)
//	report, err := svc.Apply(ctx, imp, catcare.ModeMerge)
package catcare
