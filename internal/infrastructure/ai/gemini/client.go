// Package gemini provides Google Gemini integration for recipe extraction
// and grounded blend search
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public Generative Language API
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel reads recipe cards
	DefaultModel = "gemini-2.0-flash-exp"
	// DefaultSearchModel runs grounded searches
	DefaultSearchModel = "gemini-2.0-flash"

	defaultCitationTitle = "Referência Técnica"
	defaultMimeType      = "image/jpeg"
	maxErrorBody         = 1 << 16
)

var tracer = otel.Tracer("github.com/burgermaster/blendcalc/internal/infrastructure/ai/gemini")

// Config holds Gemini client settings
type Config struct {
	APIKey      string
	Model       string
	SearchModel string
	BaseURL     string
	Timeout     time.Duration
}

// Client implements outbound.BlendAI using the Gemini REST API
type Client struct {
	apiKey      string
	model       string
	searchModel string
	baseURL     string
	client      *http.Client
	logger      *zap.Logger
}

var _ outbound.BlendAI = (*Client)(nil)

// NewClient creates a new Gemini client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SearchModel == "" {
		cfg.SearchModel = DefaultSearchModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	namedLogger := logger.Named("gemini")
	if cfg.APIKey == "" {
		namedLogger.Warn("Gemini API key not configured, AI features will report a missing credential")
	} else {
		namedLogger.Info("Gemini client initialized",
			zap.String("model", cfg.Model),
			zap.String("search_model", cfg.SearchModel))
	}

	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		searchModel: cfg.SearchModel,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: namedLogger,
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Gemini API structures
type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	Temperature      float64        `json:"temperature"`
	TopK             int            `json:"topK"`
	TopP             float64        `json:"topP"`
	MaxOutputTokens  int            `json:"maxOutputTokens"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content           content            `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type groundingChunk struct {
	Web *webSource `json:"web,omitempty"`
}

type webSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// text concatenates the text parts of the first candidate
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// citations returns the web sources grounding the first candidate
func (r generateResponse) citations() []blend.Citation {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []blend.Citation
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = defaultCitationTitle
		}
		out = append(out, blend.Citation{Title: title, URI: chunk.Web.URI})
	}
	return out
}

// ExtractFromImage reads a blend recipe from a recipe card photo
func (c *Client) ExtractFromImage(ctx context.Context, image []byte) (blend.Recipe, error) {
	ctx, span := c.startSpan(ctx, c.model, "extract_recipe")
	defer span.End()

	if !c.Configured() {
		return blend.Recipe{}, recordError(span, blend.ErrCredentialMissing)
	}

	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = defaultMimeType
	}

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
				{Text: extractionPrompt},
			},
		}},
		GenerationConfig: &generationConfig{
			Temperature:      0.4,
			TopK:             32,
			TopP:             1,
			MaxOutputTokens:  2048,
			ResponseMimeType: "application/json",
			ResponseSchema:   extractionSchema,
		},
	}

	resp, err := c.generate(ctx, c.model, req)
	if err != nil {
		return blend.Recipe{}, recordError(span, err)
	}

	raw := cleanJSONObject(resp.text())
	var recipe blend.Recipe
	if err := json.Unmarshal([]byte(raw), &recipe); err != nil {
		c.logger.Warn("Failed to parse extraction response", zap.String("raw", truncate(raw, 512)), zap.Error(err))
		return blend.Recipe{}, recordError(span, fmt.Errorf("%w: invalid JSON response: %w", blend.ErrExtractionFailed, err))
	}

	span.SetAttributes(attribute.Int("blend.meats", len(recipe.Meats)))
	return recipe, nil
}

// SearchBlends runs a grounded search for blends in a category
func (c *Client) SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error) {
	ctx, span := c.startSpan(ctx, c.searchModel, "search_blends")
	defer span.End()
	span.SetAttributes(attribute.String("blend.query", query))

	if !c.Configured() {
		return nil, recordError(span, blend.ErrCredentialMissing)
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: searchPrompt(query)}}}},
		Tools:    []tool{{GoogleSearch: &struct{}{}}},
	}

	resp, err := c.generate(ctx, c.searchModel, req)
	if err != nil {
		return nil, recordError(span, err)
	}

	raw := cleanJSONArray(resp.text())
	var blends []blend.SuggestedBlend
	if err := json.Unmarshal([]byte(raw), &blends); err != nil {
		c.logger.Warn("Failed to parse search response", zap.String("raw", truncate(raw, 512)), zap.Error(err))
		return nil, recordError(span, fmt.Errorf("%w: invalid JSON response: %w", blend.ErrSearchFailed, err))
	}

	citations := resp.citations()
	for i := range blends {
		blends[i].Citations = append([]blend.Citation(nil), citations...)
	}

	span.SetAttributes(attribute.Int("blend.results", len(blends)), attribute.Int("blend.citations", len(citations)))
	c.logger.Debug("Blend search parsed",
		zap.String("query", query),
		zap.Int("blends", len(blends)),
		zap.Int("citations", len(citations)))

	return blends, nil
}

// generate posts a generateContent request and decodes the response
func (c *Client) generate(ctx context.Context, model string, body generateRequest) (*generateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// The URL carries the key; keep it out of errors and logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(resp.StatusCode, respBody)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func statusError(status int, body []byte) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		text := string(body)
		if strings.Contains(text, "API key not valid") || strings.Contains(text, "API_KEY_INVALID") {
			return blend.ErrCredentialInvalid
		}
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: API error %d: %s", blend.ErrQuotaExceeded, status, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("API error %d: %s", status, strings.TrimSpace(string(body)))
}

func (c *Client) startSpan(ctx context.Context, model, operation string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ai.gemini."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ai.provider", "gemini"),
			attribute.String("ai.model", model),
			attribute.String("ai.operation", operation),
		),
	)
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Ping checks that the API accepts the key by fetching the model metadata.
// It does not generate content.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return blend.ErrCredentialMissing
	}

	endpoint := fmt.Sprintf("%s/models/%s?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(resp.StatusCode, body)
	}
	return nil
}
