package quiz

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	chunkSchemaOnce sync.Once
	chunkSchema     *jsonschema.Schema
	chunkSchemaErr  error
)

// ValidateChunk checks a raw chunk payload against ChunkSchema.
// Returns the parsed Chunk on success.
func ValidateChunk(raw json.RawMessage) (*Chunk, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("chunk is not valid JSON: %w", err)
	}

	compiled, err := compiledChunkSchema()
	if err != nil {
		return nil, fmt.Errorf("compile chunk schema: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, fmt.Errorf("chunk schema validation failed: %w", err)
	}

	var chunk Chunk
	if err := json.Unmarshal(raw, &chunk); err != nil {
		return nil, fmt.Errorf("decode chunk: %w", err)
	}
	return &chunk, nil
}

// Chunk is a batch of newly produced quiz items delivered over the
// streaming channel.
type Chunk struct {
	ProblemSetID string `json:"problemSetId"`
	Quiz         []Item `json:"quiz"`
}

// compiledChunkSchema compiles ChunkSchema once and caches the result.
func compiledChunkSchema() (*jsonschema.Schema, error) {
	chunkSchemaOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value (any), not raw
		// bytes. Marshal then unmarshal to get a clean any representation.
		defBytes, err := json.Marshal(ChunkSchema)
		if err != nil {
			chunkSchemaErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			chunkSchemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://generation-chunk.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			chunkSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		chunkSchema, chunkSchemaErr = c.Compile(schemaURL)
	})
	return chunkSchema, chunkSchemaErr
}
