package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mymoney/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompletionClient struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const coffeeReply = `[{"description":"Coffee","amount":150,"date":"2025-01-05","category":"Food","type":"expense"}]`

func TestParserService_ParseEntries(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		llmErr    error
		wantCount int
		wantErr   bool
		wantRaw   string
	}{
		{
			name:      "plain JSON array",
			reply:     coffeeReply,
			wantCount: 1,
		},
		{
			name:      "fenced JSON array parses identically",
			reply:     "```json\n" + coffeeReply + "\n```",
			wantCount: 1,
		},
		{
			name:      "bare fence without language tag",
			reply:     "```\n" + coffeeReply + "\n```",
			wantCount: 1,
		},
		{
			name:      "empty array",
			reply:     `[]`,
			wantCount: 0,
		},
		{
			name:    "service error propagates as structuring failure",
			llmErr:  errors.New("upstream 500"),
			wantErr: true,
		},
		{
			name:    "narrative reply carries raw content",
			reply:   "Sorry, I cannot find any transactions in this text.",
			wantErr: true,
			wantRaw: "Sorry, I cannot find any transactions in this text.",
		},
		{
			name:    "truncated JSON carries raw content",
			reply:   `[{"description":"Coffee","amount":`,
			wantErr: true,
			wantRaw: `[{"description":"Coffee","amount":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeCompletionClient{reply: tt.reply, err: tt.llmErr}
			parser := NewParserService(client, zap.NewNop())

			entries, err := parser.ParseEntries(context.Background(), "Coffee 150 Jan 5", models.DocumentModeReceipt)

			if tt.wantErr {
				require.Error(t, err)
				var structErr *StructuringError
				require.ErrorAs(t, err, &structErr)
				assert.Equal(t, tt.wantRaw, structErr.RawReply)
				assert.Nil(t, entries)
				return
			}

			require.NoError(t, err)
			require.Len(t, entries, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, "Coffee", entries[0].Description)
				assert.Equal(t, float64(150), entries[0].Amount)
				assert.Equal(t, "Food", entries[0].Category)
				assert.Equal(t, "expense", entries[0].Type)
			}
		})
	}
}

func TestParserService_PromptPolicy(t *testing.T) {
	client := &fakeCompletionClient{reply: `[]`}
	parser := NewParserService(client, zap.NewNop())

	_, err := parser.ParseEntries(context.Background(), "some text", models.DocumentModeReceipt)
	require.NoError(t, err)

	assert.Contains(t, client.prompt, `Set "type" to "expense" for all entries.`)
	assert.Contains(t, client.prompt, "some text")
	for _, c := range models.Categories {
		assert.Contains(t, client.prompt, `"`+c+`"`)
	}

	_, err = parser.ParseEntries(context.Background(), "some text", models.DocumentModeStatement)
	require.NoError(t, err)
	assert.Contains(t, client.prompt, `Set "type" to "income" if it's money coming in`)
}

func TestBuildExtractionPrompt_Date(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	prompt := buildExtractionPrompt("text", models.DocumentModeReceipt, now)
	assert.Contains(t, prompt, `"date": "2025-03-14"`)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unfenced passthrough", coffeeReply, coffeeReply},
		{"json fence", "```json\n" + coffeeReply + "\n```", coffeeReply},
		{"plain fence", "```\n" + coffeeReply + "\n```", coffeeReply},
		{"surrounding whitespace", "  \n```json\n" + coffeeReply + "\n```\n  ", coffeeReply},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.content))
		})
	}
}
