package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/auth"
)

// AuditService is everything the controllers need from the audit trail.
type AuditService interface {
	LibraryAuditor
	SessionAuditor
	AuditEventReader
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Exporter LibraryExporter
	Importer LibraryImporter
	Sessions SessionTracker
	Summary  SummaryProvider
	Database Pinger

	// Audit trail, optional
	Audit    AuditService
	Archiver PayloadArchiver

	// Task queue, optional. Backup and task routes are only mounted when set.
	TaskQueue TaskQueue

	// Authentication. Nil means every request acts as the local user.
	AuthMiddleware *auth.Middleware

	Logger  *zap.Logger
	Version string
}
