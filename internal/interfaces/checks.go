package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/reading-tracker/internal/audit"
	"github.com/mrlokans/reading-tracker/internal/auth"
	"github.com/mrlokans/reading-tracker/internal/backup"
	"github.com/mrlokans/reading-tracker/internal/database"
	auditrepo "github.com/mrlokans/reading-tracker/internal/database/audit"
	"github.com/mrlokans/reading-tracker/internal/database/users"
	"github.com/mrlokans/reading-tracker/internal/http"
	"github.com/mrlokans/reading-tracker/internal/library"
	"github.com/mrlokans/reading-tracker/internal/scheduler"
	"github.com/mrlokans/reading-tracker/internal/sessions"
	"github.com/mrlokans/reading-tracker/internal/streaks"
	"github.com/mrlokans/reading-tracker/internal/tasks"
)

// =============================================================================
// Library Reconciliation
// =============================================================================

var _ http.LibraryExporter = (*library.Exporter)(nil)
var _ http.LibraryImporter = (*library.Reconciler)(nil)
var _ backup.Exporter = (*library.Exporter)(nil)

// =============================================================================
// Sessions and Streaks
// =============================================================================

var _ http.SessionTracker = (*sessions.Manager)(nil)
var _ http.SummaryProvider = (*streaks.Service)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ auth.UserRepository = (*users.Repository)(nil)
var _ backup.UserLister = (*users.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ tasks.AuditEventCleaner = (*auditrepo.Repository)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ http.AuditService = (*audit.Service)(nil)
var _ http.PayloadArchiver = (*audit.Auditor)(nil)
var _ backup.Recorder = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ tasks.Backupper = (*backup.Service)(nil)
var _ backup.Sink = (*backup.FileSink)(nil)
var _ backup.Sink = (*backup.ObjectSink)(nil)
