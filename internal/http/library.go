package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/library"
)

// MaxImportBytes caps the size of an uploaded snapshot.
const MaxImportBytes = 32 << 20

type LibraryExporter interface {
	Export(ctx context.Context, userID uint) (*library.Snapshot, error)
}

type LibraryImporter interface {
	Import(ctx context.Context, userID uint, snap *library.Snapshot) (*library.ImportResult, error)
}

// LibraryAuditor records export and import outcomes.
type LibraryAuditor interface {
	LogExport(userID uint, counts any, err error)
	LogImport(userID uint, archived string, inserted any, err error)
}

// PayloadArchiver keeps a copy of each accepted import payload.
type PayloadArchiver interface {
	Enabled() bool
	SaveJSON(data any) (string, error)
}

type LibraryController struct {
	exporter LibraryExporter
	importer LibraryImporter
	auditor  LibraryAuditor
	archiver PayloadArchiver
	log      *zap.Logger
}

func NewLibraryController(exporter LibraryExporter, importer LibraryImporter, auditor LibraryAuditor, archiver PayloadArchiver, log *zap.Logger) *LibraryController {
	return &LibraryController{
		exporter: exporter,
		importer: importer,
		auditor:  auditor,
		archiver: archiver,
		log:      log,
	}
}

// Export handles GET /api/export and returns the snapshot as an attachment.
func (lc *LibraryController) Export(c *gin.Context) {
	userID := GetUserID(c)

	snap, err := lc.exporter.Export(c.Request.Context(), userID)
	if lc.auditor != nil {
		var counts map[library.Kind]int
		if snap != nil {
			counts = snap.Counts()
		}
		lc.auditor.LogExport(userID, counts, err)
	}
	if err != nil {
		respondError(c, lc.log, err, "export")
		return
	}

	filename := fmt.Sprintf("reading-tracker-%s.json", exportedAt(snap).UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, snap)
}

// Import handles POST /api/import and replaces the caller's library.
func (lc *LibraryController) Import(c *gin.Context) {
	userID := GetUserID(c)

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "snapshot too large", Code: "payload_too_large"})
			return
		}
		respondBadRequest(c, "bad_body", "failed to read request body")
		return
	}

	snap, err := library.DecodeSnapshot(bytes.NewReader(raw))
	if err != nil {
		lc.logImport(userID, "", nil, err)
		respondError(c, lc.log, err, "import")
		return
	}

	result, err := lc.importer.Import(c.Request.Context(), userID, snap)
	if err != nil {
		lc.logImport(userID, "", nil, err)
		respondError(c, lc.log, err, "import")
		return
	}
	lc.logImport(userID, lc.archive(raw), result.Inserted, nil)

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"inserted": result.Inserted,
		"remapped": result.Remapped,
		"dropped":  result.Dropped,
	})
}

func (lc *LibraryController) logImport(userID uint, archived string, inserted map[library.Kind]int, err error) {
	if lc.auditor != nil {
		lc.auditor.LogImport(userID, archived, inserted, err)
	}
}

// archive stores an accepted payload as received. Failures only cost the archive copy.
func (lc *LibraryController) archive(raw []byte) string {
	if lc.archiver == nil || !lc.archiver.Enabled() {
		return ""
	}
	name, err := lc.archiver.SaveJSON(json.RawMessage(raw))
	if err != nil {
		lc.log.Warn("failed to archive import payload", zap.Error(err))
		return ""
	}
	return name
}

// exportedAt is used when a snapshot has no timestamp of its own.
func exportedAt(snap *library.Snapshot) time.Time {
	if snap.ExportedAt.IsZero() {
		return time.Now()
	}
	return snap.ExportedAt
}
