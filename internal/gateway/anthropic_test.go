package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/pkg/anthropic"
)

type fakeAnthropic struct {
	reply string
	err   error
	got   anthropic.MessageRequest
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.reply}},
		Usage:   anthropic.TokenUsage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func TestAnthropicDiscover(t *testing.T) {
	fake := &fakeAnthropic{reply: "Some bakeries nearby."}
	gw := NewAnthropic(fake, 0)

	resp, err := gw.Discover(context.Background(), DiscoverRequest{
		Model:    "claude-sonnet-4-5",
		Prompt:   "find bakeries",
		Location: &model.Location{Latitude: 1, Longitude: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "Some bakeries nearby.", resp.Text)
	assert.Empty(t, resp.Citations)
	assert.Equal(t, int64(4096), fake.got.MaxTokens)
	assert.Contains(t, fake.got.Messages[0].Content, "find bakeries")
	assert.Contains(t, fake.got.Messages[0].Content, "latitude 1.00000")
}

func TestAnthropicComplete_StripsFences(t *testing.T) {
	fake := &fakeAnthropic{reply: "```json\n[{\"name\":\"A\"}]\n```"}
	gw := NewAnthropic(fake, 2048)

	out, err := gw.Complete(context.Background(), StructuredRequest{Model: "m", Prompt: "p", Schema: testSchema()})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"name":"A"}]`, string(out))
	require.Len(t, fake.got.System, 1)
	assert.Contains(t, fake.got.System[0].Text, `"array"`)
	assert.Equal(t, int64(2048), fake.got.MaxTokens)
}

func TestAnthropicComplete_Temperature(t *testing.T) {
	fake := &fakeAnthropic{reply: `[]`}
	gw := NewAnthropic(fake, 0)

	_, err := gw.Complete(context.Background(), StructuredRequest{Model: "m", Schema: testSchema()})
	require.NoError(t, err)
	assert.Nil(t, fake.got.Temperature)

	temp := 0.1
	_, err = gw.Complete(context.Background(), StructuredRequest{Model: "m", Schema: testSchema(), Temperature: &temp})
	require.NoError(t, err)
	require.NotNil(t, fake.got.Temperature)
	assert.InDelta(t, 0.1, *fake.got.Temperature, 1e-9)
}

func TestAnthropicComplete_Error(t *testing.T) {
	gw := NewAnthropic(&fakeAnthropic{err: errors.New("overloaded")}, 0)

	_, err := gw.Complete(context.Background(), StructuredRequest{Model: "m", Schema: testSchema()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway: anthropic complete")
}

func TestAnthropicComplete_Empty(t *testing.T) {
	gw := NewAnthropic(&fakeAnthropic{reply: "  "}, 0)

	_, err := gw.Complete(context.Background(), StructuredRequest{Model: "m", Schema: testSchema()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
