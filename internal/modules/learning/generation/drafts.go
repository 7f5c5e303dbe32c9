package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhayporwals/taskyn/internal/domain/learning"
	"github.com/abhayporwals/taskyn/internal/modules/learning/prompts"
)

const (
	MinTrackTasks = 5
	MaxTrackTasks = 15

	defaultLanguage = "unknown"
)

type TrackDraft struct {
	Title       string
	Categories  []string
	TotalTasks  int
	Description string
}

type AssignmentDraft struct {
	Title          string
	Description    string
	Type           string
	Difficulty     string
	Language       string
	SampleSolution string
	ExpectedOutput string
}

type FeedbackDraft struct {
	Score               float64
	Feedback            string
	Suggestions         []string
	Strengths           []string
	AreasForImprovement []string
}

// ParseTrack requires title, categories and totalTasks. A single category string
// becomes a one-element list and totalTasks is clamped into [5, 15].
func ParseTrack(raw string) (TrackDraft, error) {
	obj, err := objectFor(prompts.PromptTrack, raw)
	if err != nil {
		return TrackDraft{}, err
	}
	fail := func(reason string) (TrackDraft, error) {
		return TrackDraft{}, &ParseError{Prompt: prompts.PromptTrack, Reason: reason}
	}

	title, ok := requiredString(obj, "title")
	if !ok {
		return fail("missing required field title")
	}
	categories, ok := stringListOrScalar(obj["categories"])
	if !ok {
		return fail("missing required field categories")
	}
	rawTotal, present := obj["totalTasks"]
	if !present || isNull(rawTotal) {
		return fail("missing required field totalTasks")
	}
	total, ok := leadingInt(rawTotal)
	if !ok {
		return fail("totalTasks is not a number")
	}

	return TrackDraft{
		Title:       title,
		Categories:  categories,
		TotalTasks:  ClampTasks(total),
		Description: optionalText(obj["description"]),
	}, nil
}

// ParseAssignment requires title and description. Unknown types fall back to
// mixed, unknown difficulties to medium.
func ParseAssignment(raw string) (AssignmentDraft, error) {
	obj, err := objectFor(prompts.PromptAssignment, raw)
	if err != nil {
		return AssignmentDraft{}, err
	}
	title, ok := requiredString(obj, "title")
	if !ok {
		return AssignmentDraft{}, &ParseError{Prompt: prompts.PromptAssignment, Reason: "missing required field title"}
	}
	description, ok := requiredString(obj, "description")
	if !ok {
		return AssignmentDraft{}, &ParseError{Prompt: prompts.PromptAssignment, Reason: "missing required field description"}
	}
	language := optionalText(obj["language"])
	if language == "" {
		language = defaultLanguage
	}
	return AssignmentDraft{
		Title:          title,
		Description:    description,
		Type:           NormalizeType(optionalText(obj["type"])),
		Difficulty:     NormalizeDifficulty(optionalText(obj["difficulty"])),
		Language:       language,
		SampleSolution: optionalText(obj["sampleSolution"]),
		ExpectedOutput: optionalText(obj["expectedOutput"]),
	}, nil
}

// ParseFeedback requires score and feedback and applies no further normalization.
func ParseFeedback(raw string) (FeedbackDraft, error) {
	obj, err := objectFor(prompts.PromptFeedback, raw)
	if err != nil {
		return FeedbackDraft{}, err
	}
	rawScore, present := obj["score"]
	if !present || isNull(rawScore) {
		return FeedbackDraft{}, &ParseError{Prompt: prompts.PromptFeedback, Reason: "missing required field score"}
	}
	score, ok := number(rawScore)
	if !ok {
		return FeedbackDraft{}, &ParseError{Prompt: prompts.PromptFeedback, Reason: "score is not a number"}
	}
	text, ok := requiredString(obj, "feedback")
	if !ok {
		return FeedbackDraft{}, &ParseError{Prompt: prompts.PromptFeedback, Reason: "missing required field feedback"}
	}
	suggestions, _ := stringListOrScalar(obj["suggestions"])
	strengths, _ := stringListOrScalar(obj["strengths"])
	areas, _ := stringListOrScalar(obj["areasForImprovement"])
	return FeedbackDraft{
		Score:               score,
		Feedback:            text,
		Suggestions:         suggestions,
		Strengths:           strengths,
		AreasForImprovement: areas,
	}, nil
}

func ClampTasks(n int) int {
	if n < MinTrackTasks {
		return MinTrackTasks
	}
	if n > MaxTrackTasks {
		return MaxTrackTasks
	}
	return n
}

func NormalizeType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if learning.IsAssignmentType(s) {
		return s
	}
	return learning.TypeMixed
}

func NormalizeDifficulty(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if learning.IsDifficulty(s) {
		return s
	}
	return learning.DifficultyMedium
}

func objectFor(name prompts.PromptName, raw string) (map[string]json.RawMessage, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Prompt: name, Reason: "empty response"}
	}
	obj, ok := decodeObject(raw)
	if !ok {
		return nil, &ParseError{Prompt: name, Reason: "no JSON object found"}
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func requiredString(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// optionalText renders strings as-is and any other JSON value as its JSON text.
func optionalText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func stringListOrScalar(raw json.RawMessage) ([]string, bool) {
	if isNull(raw) {
		return nil, false
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		one = strings.TrimSpace(one)
		if one == "" {
			return nil, false
		}
		return []string{one}, true
	}
	var many []any
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(many))
	for _, v := range many {
		s := strings.TrimSpace(fmt.Sprint(v))
		if v == nil || s == "" {
			continue
		}
		out = append(out, s)
	}
	return out, true
}

func number(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// leadingInt reads numbers, or strings with a leading integer ("7 tasks"),
// truncating toward zero.
func leadingInt(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		if f > math.MaxInt32 {
			return math.MaxInt32, true
		}
		if f < math.MinInt32 {
			return math.MinInt32, true
		}
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return math.MinInt32, true
		}
		return math.MaxInt32, true
	}
	return n, true
}
