package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auditor archives raw request payloads as JSON files named by UUID.
type Auditor struct {
	AuditDir string
	log      *zap.Logger
}

func NewAuditor(auditDir string, log *zap.Logger) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
		log:      log,
	}
}

// Enabled reports whether archiving is configured.
func (a *Auditor) Enabled() bool {
	return a != nil && a.AuditDir != ""
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s.json", uuid.New().String())
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	a.log.Debug("saved audit file", zap.String("path", path))
	return filename, nil
}
