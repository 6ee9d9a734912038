// Package backup copies a source directory tree into a fresh timestamped
// directory under a target base.
//
// Each run creates exactly one root named
//
//	<target_base>/Backup YYYY-MM-DD HH-MM-SS
//
// and mirrors the source beneath it. Regular files are copied byte for byte
// and then given the source's permission bits. Directories are recreated
// with mode 0755. Symlinks, devices, sockets and pipes are skipped.
//
// # Running a Backup
//
// [Orchestrator.Run] resolves the target base, validates the source,
// creates the root and walks the tree:
//
//	store, _ := target.NewStore()
//	o := backup.NewOrchestrator(store, backup.WithLogger(logger))
//	result, err := o.Run(backup.Request{Source: "/home/pi/data"})
//
// A nil error means the root was created. Individual entries may still have
// failed; check [Result.Status] or [Result.Failed]. Failures never stop the
// walk and nothing is cleaned up afterwards.
//
// # Configuration Mode
//
// With [Request.OverrideDefault] set, Run only persists the target base as
// the new default and copies nothing.
//
// # Inspecting Backups
//
// [List] finds existing roots under a target base, newest first, and
// [Measure] summarizes one. [Verify] compares a root against its source by
// SHA-256 digest and permission bits.
//
// # Error Handling
//
//   - [ErrNoTarget]: no target base was given or configured
//   - [ErrPathTooLong]: the root path would exceed [MaxPathLen]
//   - [ErrInvalidTimestamp]: the clock returned a zero time
//   - [ErrNoBackupsFound]: a target base holds no timestamped roots
package backup
