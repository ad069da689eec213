package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// geminiReply builds a generateContent response body
func geminiReply(t *testing.T, text string, chunks ...groundingChunk) []byte {
	t.Helper()
	resp := generateResponse{Candidates: []candidate{{
		Content: content{Role: "model", Parts: []part{{Text: text}}},
	}}}
	if len(chunks) > 0 {
		resp.Candidates[0].GroundingMetadata = &groundingMetadata{GroundingChunks: chunks}
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc, apiKey string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: apiKey, BaseURL: server.URL}, zaptest.NewLogger(t))
}

func TestSearchBlends_ParsesFencedJSONAndCitations(t *testing.T) {
	var captured generateRequest
	var path, key string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geminiReply(t,
			"Aqui estão:\n```json\n[{\"name\":\"Shack\",\"description\":\"NY\",\"fatRatio\":0.2,\"meats\":[{\"name\":\"Acém\",\"ratio\":1}]}]\n```",
			groundingChunk{Web: &webSource{URI: "https://a.example", Title: "A"}},
			groundingChunk{Web: &webSource{URI: "https://b.example"}},
			groundingChunk{Web: &webSource{Title: "sem uri"}},
			groundingChunk{},
		))
	}, "secret")

	blends, err := client.SearchBlends(context.Background(), "smash")

	require.NoError(t, err)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", path)
	assert.Equal(t, "secret", key)
	require.Len(t, captured.Tools, 1)
	assert.NotNil(t, captured.Tools[0].GoogleSearch)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, `categoria: "smash"`)

	require.Len(t, blends, 1)
	assert.Equal(t, "Shack", blends[0].Name)
	assert.Equal(t, 0.2, blends[0].FatRatio)
	assert.Equal(t, []blend.Citation{
		{Title: "A", URI: "https://a.example"},
		{Title: "Referência Técnica", URI: "https://b.example"},
	}, blends[0].Citations)
}

func TestSearchBlends_CitationsAttachedToEveryBlend(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiReply(t,
			`[{"name":"A","fatRatio":0.2,"meats":[]},{"name":"B","fatRatio":0.25,"meats":[]}]`,
			groundingChunk{Web: &webSource{URI: "https://src.example", Title: "Fonte"}},
		))
	}, "secret")

	blends, err := client.SearchBlends(context.Background(), "clássicos")

	require.NoError(t, err)
	require.Len(t, blends, 2)
	for _, b := range blends {
		assert.Equal(t, []blend.Citation{{Title: "Fonte", URI: "https://src.example"}}, b.Citations)
	}
}

func TestSearchBlends_InvalidJSONIsSearchFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiReply(t, "não encontrei nada"))
	}, "secret")

	_, err := client.SearchBlends(context.Background(), "smash")

	assert.ErrorIs(t, err, blend.ErrSearchFailed)
}

func TestMissingKey_MakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, "")

	_, searchErr := client.SearchBlends(context.Background(), "smash")
	_, extractErr := client.ExtractFromImage(context.Background(), []byte("img"))

	assert.ErrorIs(t, searchErr, blend.ErrCredentialMissing)
	assert.ErrorIs(t, extractErr, blend.ErrCredentialMissing)
	assert.Zero(t, calls.Load())
	assert.False(t, client.Configured())
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"invalid key message", http.StatusBadRequest, `{"error":{"message":"API key not valid. Please pass a valid API key."}}`, blend.ErrCredentialInvalid, ""},
		{"invalid key reason", http.StatusForbidden, `{"error":{"details":[{"reason":"API_KEY_INVALID"}]}}`, blend.ErrCredentialInvalid, ""},
		{"quota exhausted", http.StatusTooManyRequests, `{"error":{"status":"RESOURCE_EXHAUSTED"}}`, blend.ErrQuotaExceeded, ""},
		{"other bad request", http.StatusBadRequest, `{"error":{"message":"bad payload"}}`, nil, "API error 400"},
		{"server error", http.StatusInternalServerError, `boom`, nil, "API error 500: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "secret")

			_, err := client.SearchBlends(context.Background(), "smash")

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, blend.ErrCredentialInvalid)
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestExtractFromImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	var captured generateRequest
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write(geminiReply(t,
			"```json\n{\"name\":\"Casa\",\"fatRatio\":0.2,\"meats\":[{\"name\":\"Acém\",\"ratio\":0.6},{\"name\":\"Costela\",\"ratio\":0.4}],\"unitWeight\":150}\n```"))
	}, "secret")

	recipe, err := client.ExtractFromImage(context.Background(), png)

	require.NoError(t, err)
	assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", path)
	require.Len(t, captured.Contents[0].Parts, 2)
	inline := captured.Contents[0].Parts[0].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "image/png", inline.MimeType)
	decoded, err := DecodeImagePayload(inline.Data)
	require.NoError(t, err)
	assert.Equal(t, png, decoded)
	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, 0.4, captured.GenerationConfig.Temperature)
	assert.Equal(t, 32, captured.GenerationConfig.TopK)
	assert.Equal(t, 2048, captured.GenerationConfig.MaxOutputTokens)

	assert.Equal(t, "Casa", recipe.Name)
	assert.Equal(t, 150.0, recipe.UnitWeight)
	assert.Len(t, recipe.Meats, 2)
}

func TestExtractFromImage_UnknownBytesDefaultToJPEG(t *testing.T) {
	var captured generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write(geminiReply(t, `{"name":"X","fatRatio":0.2,"meats":[],"unitWeight":100}`))
	}, "secret")

	_, err := client.ExtractFromImage(context.Background(), []byte("not really an image"))

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", captured.Contents[0].Parts[0].InlineData.MimeType)
}

func TestExtractFromImage_GarbageIsExtractionFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiReply(t, "não consegui ler a imagem"))
	}, "secret")

	_, err := client.ExtractFromImage(context.Background(), []byte("img"))

	assert.ErrorIs(t, err, blend.ErrExtractionFailed)
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models/gemini-2.0-flash-exp", r.URL.Path)
		if r.URL.Query().Get("key") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"models/gemini-2.0-flash-exp"}`))
	}, "good")

	assert.NoError(t, client.Ping(context.Background()))

	client.apiKey = "bad"
	assert.ErrorIs(t, client.Ping(context.Background()), blend.ErrCredentialInvalid)

	client.apiKey = ""
	assert.ErrorIs(t, client.Ping(context.Background()), blend.ErrCredentialMissing)
}
