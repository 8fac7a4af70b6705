package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/zalando/go-keyring"
)

const (
	// DefaultModel is the chat model used for title parsing.
	DefaultModel = "gpt-4.1-mini"

	envAPIKey      = "OPENAI_API_KEY"
	keyringService = "whats-this-id"
	keyringUser    = "openai_api_key"
)

// Metadata holds the set-level fields inferred from a tracklist title.
type Metadata struct {
	Artist string `json:"artist"`
	Year   int    `json:"year,omitempty"`
}

// Extractor parses artist and year out of DJ set titles. When no OpenAI API
// key is available it stays disabled and answers from title heuristics alone.
type Extractor struct {
	client  openai.Client
	model   string
	enabled bool
}

const systemPrompt = `Extract only the artist/DJ name and year from DJ set titles. If the year is not clearly present or ambiguous, return null for the year field.
The artist name should be the DJ, not venue or event names.
A set can be by two or more artists, usually separated by an ampersand (&) or "B2B", "F2F".
In that case, return all the artists separated by ampersands (&).

Examples:
- "SHDW @ Boiler Room Berlin 2023" -> artist="SHDW", year=2023
- "SHDW & Alarico @ Boiler Room Berlin 2023" -> artist="SHDW & Alarico", year=2023
- "SHDW b2b Alarico @ Boiler Room Berlin 2023" -> artist="SHDW & Alarico", year=2023
- "SHDW F2F Alarico @ Boiler Room Berlin 2023" -> artist="SHDW & Alarico", year=2023`

// NewExtractor builds an extractor for the given model (empty selects
// DefaultModel). The API key is read from the environment first, then the OS
// keyring; without one the extractor runs in heuristic-only mode.
func NewExtractor(model string) *Extractor {
	if model == "" {
		model = DefaultModel
	}

	key := apiKey()
	if key == "" {
		slog.Info("no OpenAI API key configured, set metadata falls back to title heuristics")
		return &Extractor{model: model}
	}

	return &Extractor{
		client:  openai.NewClient(option.WithAPIKey(key)),
		model:   model,
		enabled: true,
	}
}

func apiKey() string {
	if key := strings.TrimSpace(os.Getenv(envAPIKey)); key != "" {
		return key
	}
	if key, err := keyring.Get(keyringService, keyringUser); err == nil {
		return strings.TrimSpace(key)
	}
	return ""
}

// Enabled reports whether the extractor has a model behind it.
func (e *Extractor) Enabled() bool {
	return e.enabled
}

// Extract infers artist and year from a set title. Model failures are logged
// and answered with the heuristic result, never surfaced to the caller.
func (e *Extractor) Extract(ctx context.Context, title string) Metadata {
	title = strings.TrimSpace(title)
	if title == "" {
		return Metadata{}
	}

	if !e.enabled {
		return heuristicMetadata(title)
	}

	meta, err := e.extractWithModel(ctx, title)
	if err != nil {
		slog.Warn("metadata extraction failed, using title heuristics", "title", title, "error", err)
		return heuristicMetadata(title)
	}

	slog.Debug("extracted set metadata", "title", title, "artist", meta.Artist, "year", meta.Year)
	return meta
}

func (e *Extractor) extractWithModel(ctx context.Context, title string) (Metadata, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Extract the artist name and year from this DJ set title:\n\n%q", title)),
		},
		Model:       e.model,
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "set_metadata",
					Description: openai.String("Artist and year extracted from a DJ set title"),
					Strict:      openai.Bool(true),
					Schema:      metadataSchema(),
				},
			},
		},
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil && shouldFallbackToJSONMode(err) {
		// Some gateways reject json_schema; json_object plus strict parsing
		// covers them.
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		}
		resp, err = e.client.Chat.Completions.New(ctx, params)
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Metadata{}, fmt.Errorf("model returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return Metadata{}, fmt.Errorf("model returned empty content")
	}

	var meta Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse model response: %w", err)
	}
	meta.Artist = strings.TrimSpace(meta.Artist)
	if meta.Artist == "" {
		return Metadata{}, fmt.Errorf("model returned no artist")
	}
	return meta, nil
}

func metadataSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"artist", "year"},
		"properties": map[string]interface{}{
			"artist": map[string]interface{}{
				"type":        "string",
				"description": "The artist or DJ name extracted from the title",
			},
			"year": map[string]interface{}{
				"type":        []string{"integer", "null"},
				"description": "The year extracted from the title, or null if not found",
			},
		},
	}
}

func shouldFallbackToJSONMode(err error) bool {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "json_schema") || strings.Contains(msg, "response_format") {
		return true
	}
	return strings.Contains(msg, "unsupported") && strings.Contains(msg, "schema")
}

var yearPattern = regexp.MustCompile(`\b(19[9]\d|20[0-2]\d)\b`)

// heuristicMetadata guesses the artist from the conventional
// "Artist - Set Name" or "Artist @ Event" title shapes and the year from a
// plausible standalone 4-digit token.
func heuristicMetadata(title string) Metadata {
	meta := Metadata{Year: yearFromTitle(title)}

	if artist, _, found := strings.Cut(title, " - "); found {
		meta.Artist = strings.TrimSpace(artist)
	}
	if meta.Artist == "" {
		if artist, _, found := strings.Cut(title, " @ "); found {
			meta.Artist = strings.TrimSpace(artist)
		}
	}
	return meta
}

func yearFromTitle(title string) int {
	match := yearPattern.FindString(title)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	if year < 1990 || year > time.Now().Year()+1 {
		return 0
	}
	return year
}
