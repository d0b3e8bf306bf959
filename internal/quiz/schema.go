package quiz

// ChunkSchema defines the JSON schema for a streamed generation chunk.
// Chunks arrive over a long-lived channel from a server the client does not
// control, so payloads are validated before they touch session state.
var ChunkSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"problemSetId": map[string]any{
			"type":        "string",
			"description": "Server-assigned identifier of the problem set being produced",
		},
		"quiz": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"number": map[string]any{
						"type":    "integer",
						"minimum": 1,
					},
					"title": map[string]any{
						"type": "string",
					},
					"selections": map[string]any{
						"type":     "array",
						"minItems": 2,
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":      map[string]any{"type": "integer"},
								"content": map[string]any{"type": "string"},
								"correct": map[string]any{"type": "boolean"},
							},
							"required": []any{"id", "content", "correct"},
						},
					},
				},
				"required": []any{"number", "title", "selections"},
			},
		},
	},
	"required": []any{"problemSetId", "quiz"},
}
