// Package synthesis turns a completed DataContext into the final answer.
// The stage is an analyst, not a reporter: it receives every fetched
// payload up front, has no way to request more data, and is prompted to
// deliver judgments grounded in what it was given. When the context cannot
// support an answer it says so rather than fabricating one.
package synthesis

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/pkg/anthropic"
)

const analystPrompt = `You are an expert fantasy football analyst.

You are not a data clerk: you analyze the data you are given and deliver
judgments, rankings, and recommendations backed by specific numbers from it.

Rules:
- Review ALL the provided data before answering.
- When asked for a "best", "worst", or "most", commit to a clear pick and
  defend it with concrete data points.
- Never tell the user to analyze the data themselves, and never dump raw data.
- If the provided data cannot answer the question, say exactly that and what
  is missing. Never invent players, trades, or numbers.
- If some data sections are marked as failed, caveat your answer accordingly.`

// Synthesizer produces answers from complete data contexts.
type Synthesizer struct {
	llm       anthropic.Client
	model     string
	maxTokens int64
	log       *zap.Logger
}

// New returns a Synthesizer bound to a reasoning backend.
func New(llm anthropic.Client, modelName string, maxTokens int64) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	return &Synthesizer{
		llm:       llm,
		model:     modelName,
		maxTokens: maxTokens,
		log:       zap.L().Named("synthesis"),
	}
}

// Synthesize answers the context's question. A context with no usable
// payload at all yields InsufficientContextError; an unreachable reasoning
// backend yields BackendUnavailableError.
func (s *Synthesizer) Synthesize(ctx context.Context, dc *model.DataContext, history []model.Turn) (string, error) {
	if dc.Empty() {
		return "", &model.InsufficientContextError{
			Reason: "every planned data fetch failed; no data to analyze",
		}
	}

	msgs := make([]anthropic.Message, 0, 2*len(history)+1)
	for _, turn := range history {
		msgs = append(msgs,
			anthropic.Message{Role: "user", Content: turn.Question},
			anthropic.Message{Role: "assistant", Content: turn.Answer},
		)
	}
	msgs = append(msgs, anthropic.Message{Role: "user", Content: buildUserMessage(dc)})

	resp, err := s.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(analystPrompt),
		Messages:  msgs,
	})
	if err != nil {
		return "", &model.BackendUnavailableError{Service: "anthropic", Err: err}
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", &model.InsufficientContextError{
			Reason: "reasoning backend returned no text",
		}
	}

	s.log.Debug("synthesized answer",
		zap.Int("slots", dc.Len()),
		zap.Bool("degraded", dc.Degraded()),
		zap.Int64("output_tokens", resp.Usage.OutputTokens))

	return answer, nil
}

// buildUserMessage lays out the question, every slot's compact summary,
// any failures, and the analyst task instruction.
func buildUserMessage(dc *model.DataContext) string {
	var b strings.Builder
	b.WriteString("QUESTION: ")
	b.WriteString(dc.Question())
	b.WriteString("\n\nCOMPLETE DATA CONTEXT:\n")

	for _, name := range dc.SlotNames() {
		out, _ := dc.Slot(name)
		b.WriteString("\n### ")
		b.WriteString(strings.ToUpper(strings.ReplaceAll(name, "_", " ")))
		b.WriteString("\n")
		if !out.OK() {
			b.WriteString("FAILED: ")
			b.WriteString(out.Err.Message)
			b.WriteString("\n")
			continue
		}
		b.WriteString(FormatPayload(out.Payload))
		b.WriteString("\n")
	}

	if failures := dc.Failures(); len(failures) > 0 {
		b.WriteString("\nDATA GAPS: ")
		b.WriteString("the sections above marked FAILED could not be fetched. ")
		b.WriteString("Answer from what is available and caveat the gaps.\n")
	}

	b.WriteString("\nYOUR TASK: analyze all the data above and answer the question ")
	b.WriteString("with a clear, defended judgment. If the data cannot answer it, say so.")
	return b.String()
}
