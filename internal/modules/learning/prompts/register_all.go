package prompts

func RegisterAll() {
	RegisterSpec(Spec{
		Name:       PromptTrack,
		Version:    1,
		SchemaName: "track_plan",
		Schema:     TrackSchema,
		System: `
You are an expert programming instructor creating a personalized learning track.
Return JSON only, no additional text.`,
		User: `
Generate a JSON response with the following structure:

{
  "title": "Track title (max 100 characters)",
  "categories": ["category1", "category2", "category3"],
  "totalTasks": number (between 5-15),
  "description": "Brief track description (max 200 characters)"
}

User Profile:
- Interests: {{.Interests}}
- Primary Goals: {{.PrimaryGoals}}
- Secondary Goals: {{.SecondaryGoals}}
- Skill Levels: {{.SkillLevels}}
- Preferred Topics: {{.PreferredTopics}}
- Preferred Language: {{.PreferredLanguage}}
- Learning Style: {{.LearningStyle}}
- Assignment Type Preference: {{.AssignmentTypePreference}}
- Years of Experience: {{.YearsOfExperience}}
- Available Hours per Week: {{.AvailableHoursPerWeek}}
{{- if .Focus}}
- Requested Focus: {{.Focus}}
{{- end}}

Requirements:
1. Create a focused track that aligns with the user's primary goals
2. Consider their skill level and experience
3. Include 5-15 tasks based on available time
4. Categories should be relevant to their interests
5. Make it challenging but achievable

Respond only with valid JSON, no additional text.`,
	})

	RegisterSpec(Spec{
		Name:       PromptAssignment,
		Version:    1,
		SchemaName: "assignment",
		Schema:     AssignmentSchema,
		System: `
You are an expert programming instructor creating a personalized assignment.
Return JSON only, no additional text.`,
		User: `
Generate a JSON response with the following structure:

{
  "title": "Assignment title (max 100 characters)",
  "description": "Detailed assignment description with clear instructions",
  "type": "code|reading|project|mcq|mixed",
  "difficulty": "easy|medium|hard",
  "language": "programming language or 'mixed'",
  "sampleSolution": "Sample solution or approach (if applicable)",
  "expectedOutput": "Expected output or result description"
}

Context:
- Track: {{.TrackTitle}}
- Track Categories: {{.TrackCategories}}
- Task Number: {{.TaskNumber}}
- Total Tasks: {{.TotalTasks}}

User Profile:
- Interests: {{.Interests}}
- Skill Levels: {{.SkillLevels}}
- Preferred Language: {{.PreferredLanguage}}
- Learning Style: {{.LearningStyle}}
- Assignment Type Preference: {{.AssignmentTypePreference}}
- Years of Experience: {{.YearsOfExperience}}

Requirements:
1. Assignment should be {{.TypeRequirement}}
2. Difficulty should be {{.DifficultyRequirement}}
3. Consider the user's skill level and experience
4. Make it practical and engaging
5. Include clear instructions and expected outcomes
6. If it's a coding assignment, provide a sample solution approach
7. Language should match user preferences when possible

Respond only with valid JSON, no additional text.`,
	})

	RegisterSpec(Spec{
		Name:       PromptFeedback,
		Version:    1,
		SchemaName: "submission_feedback",
		Schema:     FeedbackSchema,
		System: `
You are an expert programming instructor providing constructive feedback.
Return JSON only, no additional text.`,
		User: `
Generate a JSON response with the following structure:

{
  "score": number (0-100),
  "feedback": "Detailed feedback on the submission",
  "suggestions": ["suggestion1", "suggestion2", "suggestion3"],
  "strengths": ["strength1", "strength2"],
  "areasForImprovement": ["area1", "area2"]
}

Assignment Details:
- Title: {{.AssignmentTitle}}
- Description: {{.AssignmentDescription}}
- Type: {{.AssignmentType}}
- Difficulty: {{.AssignmentDifficulty}}
- Language: {{.AssignmentLanguage}}

Submission:
- Content: {{.SubmissionContent}}
- Reflection: {{.Reflection}}

Provide constructive, encouraging feedback that helps the learner improve.
Respond only with valid JSON, no additional text.`,
	})
}
