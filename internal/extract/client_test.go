package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/receipted/internal/config"
	"github.com/mmr-tortoise/receipted/internal/model"
	"github.com/mmr-tortoise/receipted/internal/schema"
)

// TestBuildInstruction verifies the rendered prompt carries the system
// text, the schema, and the JSON-only directive.
func TestBuildInstruction(t *testing.T) {
	instruction, err := BuildInstruction(schema.Default())
	require.NoError(t, err)

	assert.Contains(t, instruction, "VAT identification number (vatNumber)")
	assert.Contains(t, instruction, `"companyName"`)
	assert.Contains(t, instruction, `"dateOfSale"`)
	assert.Contains(t, instruction, "Return ONLY valid JSON")
}

// TestDataURL verifies the data URL format and that the payload decodes
// back to the original bytes.
func TestDataURL(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	url := DataURL(model.FormatJPEG, raw)

	require.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	assert.True(t, strings.HasPrefix(DataURL(model.FormatPNG, raw), "data:image/png;base64,"))
}

// chatRequest mirrors the wire shape of the outbound chat completion
// request, for inspecting what the client actually sends.
type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

// newStubAPI starts a test HTTP server that answers every chat completion
// with the given content, recording the last request for assertions.
func newStubAPI(t *testing.T, content string) (*httptest.Server, *chatRequest) {
	t.Helper()

	captured := &chatRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, captured))

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   captured.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	return srv, captured
}

// newTestImage writes a small fake image file and returns its reference.
func newTestImage(t *testing.T, name string) model.ImageRef {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0644))
	format, err := model.FormatFromPath(path)
	require.NoError(t, err)
	return model.ImageRef{Path: path, Format: format}
}

// TestClient_Extract verifies one full request/response cycle against a
// stub endpoint: request shape, embedded image payload, and the returned
// completion text.
func TestClient_Extract(t *testing.T) {
	srv, captured := newStubAPI(t, `{"vat": 21}`)

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	cfg.Model = "test-model"

	instruction, err := BuildInstruction(schema.Default())
	require.NoError(t, err)

	client := NewClient("test-key", cfg, instruction)
	ref := newTestImage(t, "uctenka_001.jpg")

	raw, err := client.Extract(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, `{"vat": 21}`, raw)

	// Request shape: one user message with a text part and an image part.
	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, config.DefaultTemperature, captured.Temperature)
	assert.Equal(t, config.DefaultMaxTokens, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	require.Len(t, captured.Messages[0].Content, 2)

	textPart := captured.Messages[0].Content[0]
	assert.Equal(t, "text", textPart.Type)
	assert.Contains(t, textPart.Text, "Return ONLY valid JSON")

	imagePart := captured.Messages[0].Content[1]
	assert.Equal(t, "image_url", imagePart.Type)
	assert.Equal(t, DataURL(model.FormatJPEG, []byte("fake image bytes")), imagePart.ImageURL.URL)
}

// TestClient_Extract_MissingFile verifies that an unreadable image is
// reported as ErrFileNotFound without any outbound call.
func TestClient_Extract_MissingFile(t *testing.T) {
	client := NewClient("test-key", config.Default(), "instruction")

	_, err := client.Extract(context.Background(), model.ImageRef{
		Path:   filepath.Join(t.TempDir(), "missing.jpg"),
		Format: model.FormatJPEG,
	})
	assert.ErrorIs(t, err, model.ErrFileNotFound)
}

// TestClient_Extract_ServerError verifies that a non-2xx response comes
// back as an error naming the image file.
func TestClient_Extract_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "requests"}}`))
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.BaseURL = srv.URL

	client := NewClient("test-key", cfg, "instruction")
	ref := newTestImage(t, "uctenka_001.jpg")

	_, err := client.Extract(context.Background(), ref)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ref.Path,
		"inference failures must name the offending file")
}
