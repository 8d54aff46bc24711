package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/killallgit/easel/pkg/testutil/fixtures"
)

func TestFakeLLM(t *testing.T) {
	ctx := context.Background()

	t.Run("should cycle through responses", func(t *testing.T) {
		llm := NewFakeLLM("response1", "response2")

		resp1, err := llm.Call(ctx, "prompt1")
		require.NoError(t, err)
		assert.Equal(t, "response1", resp1)

		resp2, err := llm.Call(ctx, "prompt2")
		require.NoError(t, err)
		assert.Equal(t, "response2", resp2)

		resp3, err := llm.Call(ctx, "prompt3")
		require.NoError(t, err)
		assert.Equal(t, "response1", resp3)
		assert.Equal(t, 3, llm.GetCallCount())
	})

	t.Run("should stream chunks in order", func(t *testing.T) {
		llm := NewStreamingFakeLLM(`{"type":`, `"think"}`, "\n")

		var got []string
		resp, err := llm.GenerateContent(ctx,
			[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, "hi")},
			llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
				got = append(got, string(chunk))
				return nil
			}))
		require.NoError(t, err)
		assert.Equal(t, []string{`{"type":`, `"think"}`, "\n"}, got)
		assert.Equal(t, `{"type":"think"}`+"\n", resp.Choices[0].Content)
		assert.Equal(t, "hi", TextOf(llm.GetLastMessages()[0]))
	})

	t.Run("should fail after streaming when configured", func(t *testing.T) {
		llm := NewFakeLLM(fixtures.NDJSON(fixtures.CreateRectangle))
		llm.SetErrorOnCall(1, "simulated error")

		streamed := 0
		_, err := llm.GenerateContent(ctx, nil, llms.WithStreamingFunc(func(context.Context, []byte) error {
			streamed++
			return nil
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
		assert.Equal(t, 1, streamed)
	})

	t.Run("should error without responses", func(t *testing.T) {
		_, err := NewFakeLLM().Call(ctx, "prompt")
		assert.Error(t, err)
	})
}

func TestFixtures(t *testing.T) {
	assert.Equal(t, "data: {}\n", fixtures.Frame("{}"))
	assert.Equal(t, "data: {}\ndata: [DONE]\n", fixtures.Stream("{}"))
	assert.Equal(t, "{}\n{}\n", fixtures.NDJSON("{}", "{}"))
}
