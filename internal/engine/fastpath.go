package engine

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/internal/synthesis"
	"github.com/gridironhq/league-analyst/pkg/anthropic"
)

// maxToolRounds bounds the fast-path loop. A simple lookup should settle
// in one or two tool calls; anything needing more belongs on the
// data-first path.
const maxToolRounds = 3

const fastPathPrompt = `You are a fantasy football league assistant answering a quick lookup
question. Use the available tools to fetch exactly the data you need, then
answer concisely with the specific facts. If a tool reports that a name was
ambiguous or not found, relay the closest matches to the user instead of
guessing.`

// fastPath answers a simple lookup through the tool-use loop: the model
// picks catalog operations, we execute them, and it answers from the
// results. Entity-name arguments pass through the resolver first so a
// misspelled team still hits the right record.
func (e *Engine) fastPath(ctx context.Context, question string, history []model.Turn) (string, error) {
	msgs := make([]anthropic.Message, 0, 2*len(history)+1)
	for _, turn := range history {
		msgs = append(msgs,
			anthropic.Message{Role: "user", Content: turn.Question},
			anthropic.Message{Role: "assistant", Content: turn.Answer},
		)
	}
	msgs = append(msgs, anthropic.Message{Role: "user", Content: question})

	tools := e.p.Catalog.ToolDefs()

	for round := 0; round < maxToolRounds; round++ {
		resp, err := e.p.LLM.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     e.p.Model,
			MaxTokens: e.p.MaxTokens,
			System:    anthropic.BuildCachedSystemBlocks(fastPathPrompt),
			Messages:  msgs,
			Tools:     tools,
		})
		if err != nil {
			return "", &model.BackendUnavailableError{Service: "anthropic", Err: err}
		}

		uses := resp.ToolUses()
		if len(uses) == 0 {
			if text := resp.Text(); text != "" {
				return text, nil
			}
			return "", eris.New("engine: fast path returned no answer")
		}

		results := make([]anthropic.ToolResult, 0, len(uses))
		for _, use := range uses {
			content, isErr := e.runTool(ctx, use)
			results = append(results, anthropic.ToolResult{
				ToolUseID: use.ID,
				Content:   content,
				IsError:   isErr,
			})
		}
		msgs = append(msgs,
			anthropic.Message{Role: "assistant", ToolUses: uses},
			anthropic.Message{Role: "user", ToolResults: results},
		)
	}

	return "", eris.New("engine: fast path exceeded tool budget")
}

// runTool executes one requested tool call. Failures come back as error
// tool results so the model can explain them, never as Go errors.
func (e *Engine) runTool(ctx context.Context, use anthropic.ToolUse) (string, bool) {
	op, ok := e.p.Catalog.Get(use.Name)
	if !ok {
		return "unknown operation " + use.Name, true
	}

	params := map[string]any{}
	if len(use.Input) > 0 {
		if err := json.Unmarshal(use.Input, &params); err != nil {
			return "malformed arguments: " + err.Error(), true
		}
	}

	if msg, failed := e.resolveNameParams(params); failed {
		return msg, true
	}

	fetcher, ok := e.p.Fetchers[op.Source]
	if !ok {
		return "no backend for source " + string(op.Source), true
	}

	payload, err := fetcher.Fetch(ctx, use.Name, params)
	if err != nil {
		e.log.Warn("fast path tool failed",
			zap.String("operation", use.Name), zap.Error(err))
		return err.Error(), true
	}
	return synthesis.FormatPayload(payload), false
}

// resolveNameParams rewrites fuzzy entity-name arguments to canonical
// names. An ambiguous name becomes an error result listing the candidates.
func (e *Engine) resolveNameParams(params map[string]any) (string, bool) {
	for key, kind := range map[string]model.EntityKind{
		"team":   model.EntityTeam,
		"player": model.EntityPlayer,
	} {
		raw, ok := params[key].(string)
		if !ok || raw == "" {
			continue
		}
		cands, err := e.p.Resolver.Resolve(kind, raw)
		if err != nil {
			return err.Error(), true
		}
		if len(cands) > 1 {
			names := make([]string, len(cands))
			for i, c := range cands {
				names[i] = c.Entity.Name
			}
			return "ambiguous " + key + " name; closest matches: " + strings.Join(names, ", "), true
		}
		params[key] = cands[0].Entity.Name
	}
	return "", false
}
