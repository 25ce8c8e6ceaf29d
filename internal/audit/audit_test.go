package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuditor(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "audit")
	auditor := NewAuditor(tempDir, zap.NewNop())

	t.Run("SaveJSON creates audit directory and saves file", func(t *testing.T) {
		testData := map[string]interface{}{
			"books":      []string{"Dune"},
			"exportedAt": "2024-01-01T00:00:00Z",
			"count":      42,
		}

		filename, err := auditor.SaveJSON(testData)
		require.NoError(t, err)
		assert.Contains(t, filename, ".json")

		fileContent, err := os.ReadFile(filepath.Join(tempDir, filename))
		require.NoError(t, err)

		var savedData map[string]interface{}
		require.NoError(t, json.Unmarshal(fileContent, &savedData))
		assert.Equal(t, float64(42), savedData["count"])
		assert.Equal(t, []interface{}{"Dune"}, savedData["books"])
	})

	t.Run("SaveJSON generates unique filenames", func(t *testing.T) {
		filename1, err := auditor.SaveJSON(map[string]string{"key": "value"})
		require.NoError(t, err)
		filename2, err := auditor.SaveJSON(map[string]string{"key": "value"})
		require.NoError(t, err)
		assert.NotEqual(t, filename1, filename2)
	})

	t.Run("Enabled", func(t *testing.T) {
		assert.True(t, auditor.Enabled())
		assert.False(t, NewAuditor("", zap.NewNop()).Enabled())
		var nilAuditor *Auditor
		assert.False(t, nilAuditor.Enabled())
	})
}
