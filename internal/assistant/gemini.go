// Package assistant answers free-text questions about the stored attendance
// and expense data through the Gemini API. The adapter contract is that it
// never errors to the caller: misconfiguration and transport failures both
// resolve to fixed displayable strings.
package assistant

import (
	"context"
	"log/slog"

	"google.golang.org/genai"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

// Fixed user-facing strings. Failures surface as text, never as errors.
const (
	MsgMissingKey = "错误：API密钥未配置。请确保您的环境中已设置API_KEY。"
	MsgCallFailed = "抱歉，与AI助手通信时发生错误。请稍后再试。"
)

type Gemini struct {
	apiKey string
	model  string
}

// NewGemini builds the adapter. An empty key is allowed; Summarize then
// returns the missing-key message instead of calling out.
func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{apiKey: apiKey, model: model}
}

// Summarize sends the aggregated data and question to the model and returns
// the reply text. The returned string is always displayable.
func (g *Gemini) Summarize(ctx context.Context, identity core.Identity, records []core.AttendanceRecord, expenses []core.ExpenseEntry, query string) string {
	if g.apiKey == "" {
		return MsgMissingKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create Gemini client", "error", err)
		return MsgCallFailed
	}

	prompt := BuildPrompt(identity, records, expenses, query)
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		slog.ErrorContext(ctx, "Gemini API call failed", "model", g.model, "error", err)
		return MsgCallFailed
	}

	text := resp.Text()
	if text == "" {
		slog.WarnContext(ctx, "Gemini returned an empty reply", "model", g.model)
		return MsgCallFailed
	}
	return text
}
