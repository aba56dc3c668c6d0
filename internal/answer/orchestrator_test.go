package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/llm"
	"github.com/hyperjump/sakha/internal/llm/mocks"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/query"
)

type fakeRetriever struct {
	verses []*models.Verse
	err    error
	calls  int
	topK   int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, topK int) ([]*models.Verse, error) {
	f.calls++
	f.topK = topK
	return f.verses, f.err
}

func sampleVerses() []*models.Verse {
	return []*models.Verse{
		{ID: "2.47", OriginalText: "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन", DisplayMeaning: "कर्म करने में ही तुम्हारा अधिकार है", SearchMeaning: "You have a right to your actions only"},
		{ID: "2.48", OriginalText: "योगस्थः कुरु कर्माणि", DisplayMeaning: "योग में स्थित होकर कर्म करो", SearchMeaning: "Perform action established in yoga"},
	}
}

func TestAnswerGreetingShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	r := &fakeRetriever{}
	o := NewOrchestrator(r, gen, config.LLMConfig{}, 0, 0, nil)

	resp, err := o.Answer(context.Background(), "Radhe Radhe!", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Answer)
	assert.Equal(t, query.GreetingReply, *resp.Answer)
	assert.True(t, resp.Greeting)
	assert.True(t, resp.GenerationUsed)
	assert.Empty(t, resp.Verses)
	assert.Equal(t, 0, r.calls)
}

func TestAnswerValidation(t *testing.T) {
	o := NewOrchestrator(&fakeRetriever{}, nil, config.LLMConfig{}, 0, 0, nil)

	for _, q := range []string{"", "a", "ab", "   ", "\t\n"} {
		_, err := o.Answer(context.Background(), q, nil)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
}

func TestAnswerShortGreetings(t *testing.T) {
	for _, q := range []string{"hi", "om", "yo", "gm", "ॐ", "जय"} {
		t.Run(q, func(t *testing.T) {
			r := &fakeRetriever{}
			o := NewOrchestrator(r, nil, config.LLMConfig{}, 0, 0, nil)

			resp, err := o.Answer(context.Background(), q, nil)
			require.NoError(t, err)
			require.NotNil(t, resp.Answer)
			assert.Equal(t, query.GreetingReply, *resp.Answer)
			assert.True(t, resp.Greeting)
			assert.Equal(t, 0, r.calls)
		})
	}
}

func TestAnswerConfiguredMinLength(t *testing.T) {
	r := &fakeRetriever{verses: sampleVerses()}
	o := NewOrchestrator(r, nil, config.LLMConfig{}, 0, 10, nil)

	_, err := o.Answer(context.Background(), "my duty", nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, 0, r.calls)

	_, err = o.Answer(context.Background(), "what is my duty", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.calls)
}

func TestAnswerGenerates(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	r := &fakeRetriever{verses: sampleVerses()}
	o := NewOrchestrator(r, gen, config.LLMConfig{Model: "llama-3.1-8b-instant"}, 0, 0, nil)

	history := []models.ConversationTurn{{Question: "मुझे डर लगता है", Answer: "डरो मत"}}
	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *llm.Request) (string, error) {
			assert.Equal(t, SystemPrompt, req.System)
			assert.Equal(t, 600, req.MaxTokens)
			assert.Equal(t, 0.3, req.Temperature)
			assert.True(t, req.Stream)
			assert.Equal(t, "llama-3.1-8b-instant", req.Model)
			assert.Contains(t, req.User, `भक्त का प्रश्न: "I lost my job"`)
			assert.Contains(t, req.User, "Shloka ID: 2.47")
			assert.Contains(t, req.User, "1. प्रश्न: मुझे डर लगता है")
			return "कर्मण्येवाधिकारस्ते...\n\nहे पार्थ!", nil
		}).
		Times(1)

	resp, err := o.Answer(context.Background(), "I lost my job", history)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, r.topK)
	assert.True(t, resp.GenerationUsed)
	assert.False(t, resp.Greeting)
	require.NotNil(t, resp.Answer)
	assert.Equal(t, "कर्मण्येवाधिकारस्ते...\n\nहे पार्थ!", *resp.Answer)
	assert.Len(t, resp.Verses, 2)
}

func TestAnswerGenerationFailureDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	core, logs := observer.New(zap.WarnLevel)
	o := NewOrchestrator(&fakeRetriever{verses: sampleVerses()}, gen, config.LLMConfig{}, 0, 0, zap.New(core))

	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("connection reset")).Times(1)

	resp, err := o.Answer(context.Background(), "I lost my job", nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Answer)
	assert.False(t, resp.GenerationUsed)
	assert.Len(t, resp.Verses, 2)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "answer generation failed", logs.All()[0].Message)
}

func TestAnswerWithoutGenerator(t *testing.T) {
	o := NewOrchestrator(&fakeRetriever{verses: sampleVerses()}, nil, config.LLMConfig{}, 3, 0, nil)

	resp, err := o.Answer(context.Background(), "what is my duty", nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Answer)
	assert.False(t, resp.GenerationUsed)
	assert.Len(t, resp.Verses, 2)
}

func TestAnswerRetrieveErrorPropagates(t *testing.T) {
	o := NewOrchestrator(&fakeRetriever{err: models.ResourceError("corpus", nil)}, nil, config.LLMConfig{}, 0, 0, nil)
	_, err := o.Answer(context.Background(), "what is my duty", nil)
	assert.ErrorIs(t, err, models.ErrResourceMissing)
}

func TestAnswerNonStreamingConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	stream := false
	temperature := 0.0
	o := NewOrchestrator(&fakeRetriever{verses: sampleVerses()}, gen, config.LLMConfig{Stream: &stream, MaxTokens: 200, Temperature: &temperature}, 0, 0, nil)

	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *llm.Request) (string, error) {
			assert.False(t, req.Stream)
			assert.Equal(t, 0.0, req.Temperature)
			assert.Equal(t, 200, req.MaxTokens)
			return "ok", nil
		}).
		Times(1)

	_, err := o.Answer(context.Background(), "what is my duty", nil)
	require.NoError(t, err)
}

func TestFormatHistoryKeepsLastThree(t *testing.T) {
	history := []models.ConversationTurn{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: strings.Repeat("क", 150)},
		{Question: "q4", Answer: "a4"},
	}
	got := FormatHistory(history)
	want := strings.Join([]string{
		"पिछली बातचीत:",
		"1. प्रश्न: q2",
		"   उत्तर: a2...",
		"2. प्रश्न: q3",
		"   उत्तर: " + strings.Repeat("क", 100) + "...",
		"3. प्रश्न: q4",
		"   उत्तर: a4...",
	}, "\n")
	assert.Equal(t, want, got)
	assert.Equal(t, "", FormatHistory(nil))
}

func TestBuildUserPrompt(t *testing.T) {
	got := BuildUserPrompt("what is karma", sampleVerses()[:1], nil)
	want := "भक्त का प्रश्न: \"what is karma\"\n\n\n\nउपलब्ध श्लोक (संदर्भ):\n" +
		"Shloka ID: 2.47\nSanskrit: कर्मण्येवाधिकारस्ते मा फलेषु कदाचन\nMeaning: You have a right to your actions only\n" +
		"\n\n" + closingInstruction
	assert.Equal(t, want, got)
}

func TestFormatContextJoinsBlocks(t *testing.T) {
	got := FormatContext(sampleVerses())
	assert.Equal(t, 2, strings.Count(got, "Shloka ID:"))
	assert.Contains(t, got, "Meaning: You have a right to your actions only\n\nShloka ID: 2.48")
}
