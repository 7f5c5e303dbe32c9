package prompts

// Schemas are non-strict: providers may use them as a hint, and the generation
// client still validates every response itself.

func TrackSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"categories":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"totalTasks":  map[string]any{"type": "integer", "minimum": 5, "maximum": 15},
			"description": map[string]any{"type": "string"},
		},
		"required": []string{"title", "categories", "totalTasks"},
	}
}

func AssignmentSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":          map[string]any{"type": "string"},
			"description":    map[string]any{"type": "string"},
			"type":           map[string]any{"type": "string", "enum": []string{"code", "reading", "project", "mcq", "mixed"}},
			"difficulty":     map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
			"language":       map[string]any{"type": "string"},
			"sampleSolution": map[string]any{"type": "string"},
			"expectedOutput": map[string]any{"type": "string"},
		},
		"required": []string{"title", "description"},
	}
}

func FeedbackSchema() map[string]any {
	stringList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":               map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"feedback":            map[string]any{"type": "string"},
			"suggestions":         stringList,
			"strengths":           stringList,
			"areasForImprovement": stringList,
		},
		"required": []string{"score", "feedback"},
	}
}
