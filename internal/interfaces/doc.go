// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the small interfaces they need next to the code that uses
// them. This package only asserts, at compile time, that the concrete types
// wired in internal/entrypoint satisfy them.
//
// # Interface Categories
//
// ## Library Interfaces
//
//   - LibraryExporter, LibraryImporter: snapshot export and import (internal/http/library.go)
//   - Exporter: snapshot source for backups (internal/backup/service.go)
//
// ## Session Interfaces
//
//   - SessionTracker: start, stop and list sessions (internal/http/sessions.go)
//   - SummaryProvider: streaks and totals (internal/http/sessions.go)
//
// ## Data Access Interfaces
//
//   - UserRepository: users and token hashes (internal/auth/service.go)
//   - UserLister: users included in a full backup (internal/backup/service.go)
//   - AuditEventCleaner: audit retention (internal/tasks/cleanup_audit.go)
//
// ## Background Work Interfaces
//
//   - TaskQueue: enqueue and inspect tasks (internal/http/tasks.go)
//   - Enqueuer: what the scheduler hands fired jobs to (internal/scheduler/scheduler.go)
//   - Backupper: work behind the backup queue (internal/tasks/backup.go)
//   - Sink: backup destination, directory or bucket (internal/backup/sink.go)
//
// # Adding a New Backup Destination
//
//  1. Implement backup.Sink in internal/backup/
//
//     type SFTPSink struct{ client *sftp.Client }
//
//     func (s *SFTPSink) Put(ctx context.Context, key string, data []byte) (string, error) {
//         // Write data under key, return where it ended up
//     }
//
//  2. Add a compile-time check here
//
//     var _ backup.Sink = (*backup.SFTPSink)(nil)
//
//  3. Select it in newSink (internal/entrypoint/app.go)
package interfaces
