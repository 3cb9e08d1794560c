package mcpsrv

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quailyquaily/humanloop/internal/format"
)

// AskHumanArgs is the ask_human tool input.
type AskHumanArgs struct {
	// Question is the question to ask the human. Be specific and provide
	// context.
	Question string `json:"question"`
	// ThreadTS continues an existing conversation thread when set.
	ThreadTS string `json:"thread_ts,omitempty"`
}

// AskHumanResult is the ask_human tool output.
type AskHumanResult struct {
	Response string `json:"response"`
	ThreadTS string `json:"thread_ts"`
}

// handleAskHuman validates the arguments, blocks on the correlation
// engine, and converts every failure into an error-text result: the MCP
// session must never see a raw error from the bridge.
func (s *Server) handleAskHuman(ctx context.Context, req *mcp.CallToolRequest, args AskHumanArgs) (*mcp.CallToolResult, AskHumanResult, error) {
	question := strings.TrimSpace(args.Question)
	if question == "" {
		return errorResult("invalid arguments: question must be a non-empty string"), AskHumanResult{}, nil
	}
	threadTS := strings.TrimSpace(args.ThreadTS)
	s.logger.Info("tool_call",
		"tool", "ask_human",
		"thread_ts", threadTS,
		"question_preview", format.Preview(question, 100),
	)

	response, outThreadTS, err := s.engine.Ask(ctx, question, threadTS)
	if err != nil {
		s.logger.Warn("tool_call_error", "tool", "ask_human", "thread_ts", outThreadTS, "error", err.Error())
		return errorResult("error asking human: " + err.Error()), AskHumanResult{ThreadTS: outThreadTS}, nil
	}
	return nil, AskHumanResult{Response: response, ThreadTS: outThreadTS}, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
