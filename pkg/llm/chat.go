// Package llm wraps the chat model behind the assistant, meeting summary,
// and handwriting transcription features. It adapts langchaingo's content
// API to boardstack's needs: streamed deltas, the getImageSrc tool loop,
// and vision input for handwriting frames.
package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/boardstack/boardstack/pkg/errors"
	"github.com/boardstack/boardstack/pkg/integrations/imagesearch"
)

// maxToolCallRounds bounds the tool-call loop so a misbehaving model cannot
// spin forever requesting images.
const maxToolCallRounds = 10

// ImageSearcher resolves getImageSrc tool calls. Satisfied by
// [imagesearch.Client].
type ImageSearcher interface {
	Search(ctx context.Context, query, size string) (string, error)
	Enabled() bool
}

// ChatRequest is one assistant turn.
type ChatRequest struct {
	// Prompt is the user's question.
	Prompt string

	// Context carries the previous conversation, verbatim.
	Context string

	// SelectionContext is pre-formatted canvas context assembled from the
	// user's selected shapes.
	SelectionContext string
}

// Chat runs assistant conversations against a chat model.
type Chat struct {
	model  llms.Model
	images ImageSearcher
	logger *log.Logger
}

// NewChat creates a Chat. images may be nil to disable the image tool.
func NewChat(model llms.Model, images ImageSearcher, logger *log.Logger) *Chat {
	return &Chat{model: model, images: images, logger: logger}
}

// imageTool is the getImageSrc function definition offered to the model.
var imageTool = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name:        imagesearch.ToolName,
		Description: imagesearch.ToolDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"altText": map[string]any{
					"type":        "string",
					"description": "The search query or alt text describing the image to find",
				},
			},
			"required": []string{"altText"},
		},
	},
}

// Stream generates the assistant response, calling onDelta for every text
// chunk as it arrives. Tool calls from the model are resolved via the image
// searcher and fed back, up to maxToolCallRounds rounds; the final round's
// text is what the caller streams to the user.
func (c *Chat) Stream(ctx context.Context, req ChatRequest, onDelta func(string) error) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "empty prompt")
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: SystemPrompt}}},
	}
	// Context goes before the prompt so the model has it when reading the question.
	if req.Context != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: "Additional context: " + req.Context}},
		})
	}
	if req.SelectionContext != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: req.SelectionContext}},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextContent{Text: req.Prompt}},
	})

	opts := []llms.CallOption{
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			return onDelta(string(chunk))
		}),
	}
	if c.images != nil && c.images.Enabled() {
		opts = append(opts, llms.WithTools([]llms.Tool{imageTool}))
	}

	for round := 0; round < maxToolCallRounds; round++ {
		resp, err := c.model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeUpstream, "generating chat response")
		}
		if len(resp.Choices) == 0 {
			return errors.New(errors.ErrCodeUpstream, "chat model returned no choices")
		}

		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			return nil
		}

		// Echo the assistant's tool calls, then append each tool result, and
		// loop for another completion.
		assistantMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, tc := range choice.ToolCalls {
			assistantMsg.Parts = append(assistantMsg.Parts, tc)
		}
		messages = append(messages, assistantMsg)

		for _, tc := range choice.ToolCalls {
			result := c.resolveToolCall(ctx, tc)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    result,
				}},
			})
		}
	}

	if c.logger != nil {
		c.logger.Warn("tool call round limit reached", "rounds", maxToolCallRounds)
	}
	return nil
}

func (c *Chat) resolveToolCall(ctx context.Context, tc llms.ToolCall) string {
	if tc.FunctionCall == nil || tc.FunctionCall.Name != imagesearch.ToolName {
		return "unknown tool"
	}

	var args struct {
		AltText string `json:"altText"`
	}
	if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil || args.AltText == "" {
		return "invalid arguments"
	}

	url, err := c.images.Search(ctx, args.AltText, "")
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("image search failed", "query", args.AltText, "err", err)
		}
		return "no image found"
	}
	return url
}

// StreamSummary generates a meeting summary from a transcript, streaming
// markdown deltas through onDelta.
func (c *Chat) StreamSummary(ctx context.Context, transcript string, onDelta func(string) error) error {
	if strings.TrimSpace(transcript) == "" {
		return errors.New(errors.ErrCodeEmptyTranscript, "empty transcript")
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: summarySystemPrompt}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: transcript}}},
	}

	_, err := c.model.GenerateContent(ctx, messages,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			return onDelta(string(chunk))
		}),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeUpstream, "generating summary")
	}
	return nil
}

// Summarize is StreamSummary collected into a single string, for callers
// that persist rather than stream.
func (c *Chat) Summarize(ctx context.Context, transcript string) (string, error) {
	var sb strings.Builder
	if err := c.StreamSummary(ctx, transcript, func(delta string) error {
		sb.WriteString(delta)
		return nil
	}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// TranscribeImage extracts the text content of a handwriting frame image.
// mimeType must be image/png or image/jpeg.
func (c *Chat) TranscribeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	if mimeType != "image/png" && mimeType != "image/jpeg" {
		return "", errors.New(errors.ErrCodeInvalidFile, "unsupported image type %s", mimeType)
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{
			Text: "Transcribe all handwritten and typed text visible in the image. " +
				"Return only the transcribed text, preserving line breaks. " +
				"Return an empty response if the image contains no text.",
		}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{
			llms.BinaryPart(mimeType, data),
		}},
	}

	resp, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeUpstream, "transcribing image")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrCodeUpstream, "vision model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
