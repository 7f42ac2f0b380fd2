package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault verifies the built-in receipt field set.
func TestDefault(t *testing.T) {
	s := Default()

	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
		assert.True(t, f.Required, "all built-in fields are required in the prompt schema")
		assert.NotEmpty(t, f.Description, "field %s must carry a description for the model", f.Name)
	}

	assert.Equal(t, []string{
		"companyName",
		"vatNumber",
		"priceWithoutVAT",
		"vat",
		"vatRate",
		"priceIncludingVAT",
		"dateOfSale",
	}, names)
}

// TestRenderJSON verifies the rendered prompt schema is valid JSON with
// the expected structure.
func TestRenderJSON(t *testing.T) {
	rendered, err := Default().RenderJSON()
	require.NoError(t, err)

	var doc struct {
		Type       string   `json:"type"`
		Required   []string `json:"required"`
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(rendered), &doc),
		"rendered schema must be valid JSON")

	assert.Equal(t, "object", doc.Type)
	assert.Len(t, doc.Required, 7)
	assert.Contains(t, doc.Required, "vatRate")
	assert.Equal(t, "number", doc.Properties["priceIncludingVAT"].Type)
	assert.Equal(t, "string", doc.Properties["dateOfSale"].Type)
}

// TestLoadFile verifies that a YAML override replaces the built-in fields
// and defaults the type to string when omitted.
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	content := `fields:
  - name: vendor
    type: string
    description: Store name as printed on the receipt.
    required: true
  - name: total
    type: number
    required: true
  - name: currency
    description: ISO 4217 currency code.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, s.Fields, 3)

	assert.Equal(t, "vendor", s.Fields[0].Name)
	assert.True(t, s.Fields[1].Required)
	assert.False(t, s.Fields[2].Required)

	rendered, err := s.RenderJSON()
	require.NoError(t, err)
	var doc struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(rendered), &doc))
	// Omitted type falls back to string.
	assert.Equal(t, "string", doc.Properties["currency"].Type)
}

// TestLoadFile_Invalid verifies rejection of missing, empty, and
// malformed schema files.
func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("no fields", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("fields: []\n"), 0644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("field without name", func(t *testing.T) {
		path := filepath.Join(dir, "noname.yaml")
		require.NoError(t, os.WriteFile(path, []byte("fields:\n  - type: string\n"), 0644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("fields: [\n"), 0644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}
