package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhayporwals/taskyn/internal/modules/learning/prompts"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type fakeProvider struct {
	text string
	err  error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(context.Context, prompts.Prompt) (string, error) {
	return f.text, f.err
}

type recorded struct {
	prompt, outcome string
}

type fakeRecorder struct {
	mu  sync.Mutex
	got []recorded
}

func (r *fakeRecorder) ObserveGeneration(prompt, _ string, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, recorded{prompt: prompt, outcome: outcome})
}

func TestClampTasks(t *testing.T) {
	cases := map[int]int{0: 5, 4: 5, 5: 5, 9: 9, 15: 15, 16: 15, 1000: 15, -3: 5}
	for in, want := range cases {
		require.Equal(t, want, ClampTasks(in), "clamp(%d)", in)
	}
}

func TestParseTrackFromFreeText(t *testing.T) {
	d, err := ParseTrack(`here you go: {"title":"T","categories":"solo","totalTasks":3}`)
	require.NoError(t, err)
	require.Equal(t, "T", d.Title)
	require.Equal(t, []string{"solo"}, d.Categories)
	require.Equal(t, 5, d.TotalTasks)
}

func TestParseTrackTotalTasksForms(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{`{"title":"T","categories":["a"],"totalTasks":7.9}`, 7},
		{`{"title":"T","categories":["a"],"totalTasks":"12 tasks"}`, 12},
		{`{"title":"T","categories":["a"],"totalTasks":0}`, 5},
		{`{"title":"T","categories":["a"],"totalTasks":40}`, 15},
		{`{"title":"T","categories":["a"],"totalTasks":"99999999999999999999"}`, 15},
		{`{"title":"T","categories":["a"],"totalTasks":"-99999999999999999999"}`, 5},
		{`{"title":"T","categories":["a"],"totalTasks":-1e30}`, 5},
	}
	for _, tc := range cases {
		d, err := ParseTrack(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, d.TotalTasks, tc.raw)
	}
}

func TestParseTrackCategoryElementsStringified(t *testing.T) {
	d, err := ParseTrack(`{"title":"T","categories":["go", 3, true],"totalTasks":6}`)
	require.NoError(t, err)
	require.Equal(t, []string{"go", "3", "true"}, d.Categories)
}

func TestParseTrackMissingFields(t *testing.T) {
	inputs := []string{
		`{"categories":["a"],"totalTasks":6}`,
		`{"title":"T","totalTasks":6}`,
		`{"title":"T","categories":null,"totalTasks":6}`,
		`{"title":"T","categories":["a"]}`,
		`{"title":"T","categories":["a"],"totalTasks":"many"}`,
		`{"title":"T","categories":{"x":1},"totalTasks":6}`,
		`no json here`,
		``,
	}
	for _, in := range inputs {
		_, err := ParseTrack(in)
		var pe *ParseError
		require.ErrorAs(t, err, &pe, in)
		require.Equal(t, prompts.PromptTrack, pe.Prompt)
	}
}

func TestParseAssignmentNormalizes(t *testing.T) {
	d, err := ParseAssignment(`{"title":"A","description":"D","type":"essay","difficulty":"extreme"}`)
	require.NoError(t, err)
	require.Equal(t, "mixed", d.Type)
	require.Equal(t, "medium", d.Difficulty)
	require.Equal(t, "unknown", d.Language)

	d, err = ParseAssignment(`{"title":"A","description":"D","type":" CODE ","difficulty":"Hard","language":"Go","expectedOutput":42}`)
	require.NoError(t, err)
	require.Equal(t, "code", d.Type)
	require.Equal(t, "hard", d.Difficulty)
	require.Equal(t, "Go", d.Language)
	require.Equal(t, "42", d.ExpectedOutput)
}

func TestParseAssignmentRequiresDescription(t *testing.T) {
	_, err := ParseAssignment(`{"title":"A"}`)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseFeedback(t *testing.T) {
	d, err := ParseFeedback("```json\n{\"score\": \"8.5\", \"feedback\": \"good\", \"strengths\": [\"naming\"]}\n```")
	require.NoError(t, err)
	require.InDelta(t, 8.5, d.Score, 0.0001)
	require.Equal(t, "good", d.Feedback)
	require.Equal(t, []string{"naming"}, d.Strengths)
	require.Empty(t, d.Suggestions)

	_, err = ParseFeedback(`{"feedback":"good"}`)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestExtractJSONObjectIgnoresBracesInStrings(t *testing.T) {
	got, ok := ExtractJSONObject(`note {not json} then {"title":"a } b { c","n":1} trailing }`)
	require.True(t, ok)
	require.Equal(t, `{"title":"a } b { c","n":1}`, got)

	_, ok = ExtractJSONObject("nothing to see")
	require.False(t, ok)
}

func TestClientProviderErrorIsGenerationError(t *testing.T) {
	rec := &fakeRecorder{}
	c := NewClient(logger.Nop(), &fakeProvider{err: errors.New("boom")}, rec)

	_, err := c.GenerateTrack(context.Background(), prompts.Track(prompts.FromPreferences(nil)))
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, "fake", ge.Provider)
	require.Equal(t, []recorded{{prompt: "track", outcome: OutcomeProviderError}}, rec.got)
}

func TestClientBlankResponseIsGenerationError(t *testing.T) {
	c := NewClient(logger.Nop(), &fakeProvider{text: "   "}, nil)
	_, err := c.GenerateFeedback(context.Background(), prompts.Feedback(prompts.FromPreferences(nil)))
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
}

func TestClientParsesAndRecords(t *testing.T) {
	rec := &fakeRecorder{}
	c := NewClient(logger.Nop(), &fakeProvider{text: `{"title":"A","description":"D","type":"reading","difficulty":"easy"}`}, rec)

	d, err := c.GenerateAssignment(context.Background(), prompts.Assignment(prompts.FromPreferences(nil)))
	require.NoError(t, err)
	require.Equal(t, "reading", d.Type)

	c = NewClient(logger.Nop(), &fakeProvider{text: `{"description":"D"}`}, rec)
	_, err = c.GenerateAssignment(context.Background(), prompts.Assignment(prompts.FromPreferences(nil)))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, []recorded{
		{prompt: "assignment", outcome: OutcomeOK},
		{prompt: "assignment", outcome: OutcomeParseError},
	}, rec.got)
}
