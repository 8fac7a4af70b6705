package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExtractor(serverURL string) *Extractor {
	return &Extractor{
		client: openai.NewClient(
			option.WithAPIKey("test-key"),
			option.WithBaseURL(serverURL),
			option.WithMaxRetries(0),
		),
		model:   DefaultModel,
		enabled: true,
	}
}

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	})
	return string(body)
}

func TestExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req["model"])
		assert.EqualValues(t, 0, req["temperature"])

		messages, ok := req["messages"].([]interface{})
		require.True(t, ok)
		require.Len(t, messages, 2)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse(`{"artist":"SHDW & Alarico","year":2023}`))
	}))
	defer server.Close()

	e := testExtractor(server.URL)
	meta := e.Extract(context.Background(), "SHDW b2b Alarico @ Boiler Room Berlin 2023")
	assert.Equal(t, "SHDW & Alarico", meta.Artist)
	assert.Equal(t, 2023, meta.Year)
}

func TestExtract_NullYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse(`{"artist":"Charlotte de Witte","year":null}`))
	}))
	defer server.Close()

	e := testExtractor(server.URL)
	meta := e.Extract(context.Background(), "Charlotte de Witte @ Awakenings")
	assert.Equal(t, "Charlotte de Witte", meta.Artist)
	assert.Zero(t, meta.Year)
}

func TestExtract_JSONModeFallback(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"response_format json_schema is not supported"}}`)
			return
		}

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		format, ok := req["response_format"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "json_object", format["type"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse(`{"artist":"Amelie Lens","year":2024}`))
	}))
	defer server.Close()

	e := testExtractor(server.URL)
	meta := e.Extract(context.Background(), "Amelie Lens @ Exhale 2024")
	assert.Equal(t, "Amelie Lens", meta.Artist)
	assert.Equal(t, 2024, meta.Year)
	assert.EqualValues(t, 2, calls.Load())
}

func TestExtract_ModelFailureFallsBackToHeuristics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := testExtractor(server.URL)
	meta := e.Extract(context.Background(), "Boris Brejcha - Tomorrowland 2023")
	assert.Equal(t, "Boris Brejcha", meta.Artist)
	assert.Equal(t, 2023, meta.Year)
}

func TestExtract_Disabled(t *testing.T) {
	e := &Extractor{model: DefaultModel}
	assert.False(t, e.Enabled())

	meta := e.Extract(context.Background(), "Ben Klock @ Berghain 2019")
	assert.Equal(t, "Ben Klock", meta.Artist)
	assert.Equal(t, 2019, meta.Year)
}

func TestHeuristicMetadata(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		artist string
		year   int
	}{
		{"dash separator", "Boris Brejcha - Tomorrowland 2023", "Boris Brejcha", 2023},
		{"at separator", "SHDW @ Boiler Room Berlin 2023", "SHDW", 2023},
		{"dash wins over at", "Tale Of Us - Afterlife @ Printworks 2022", "Tale Of Us", 2022},
		{"no separator", "Untitled Live Recording", "", 0},
		{"year too old", "Sven Väth @ Omen 1989", "Sven Väth", 0},
		{"no year", "Jeff Mills @ The Liquid Room", "Jeff Mills", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := heuristicMetadata(tt.title)
			assert.Equal(t, tt.artist, meta.Artist)
			assert.Equal(t, tt.year, meta.Year)
		})
	}
}

func TestShouldFallbackToJSONMode(t *testing.T) {
	assert.True(t, shouldFallbackToJSONMode(fmt.Errorf("json_schema rejected")))
	assert.True(t, shouldFallbackToJSONMode(fmt.Errorf("invalid response_format")))
	assert.True(t, shouldFallbackToJSONMode(fmt.Errorf("unsupported structured schema")))
	assert.False(t, shouldFallbackToJSONMode(fmt.Errorf("rate limit exceeded")))
}
