// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/cinematographus/internal/models"
)

// triviaPrompt forces the completion into a parseable shape: the body of
// the question followed by the correct option number as the final
// character.
const triviaPrompt = "Ask a trivia question about this film, give 3 answer options, end with the correct answer number (1, 2, or 3)."

// DefaultTriviaModel is the completion model used when none is configured.
const DefaultTriviaModel = "llama-3.3-70b-versatile"

// Trivia is the client for the AI trivia generator, a chat-completions
// endpoint prompted to produce one quiz question per film.
type Trivia struct {
	*baseClient
	model string
}

// NewTrivia builds a Trivia client from opts. The API key is sent as a
// bearer token; an empty model falls back to DefaultTriviaModel.
func NewTrivia(opts Options, model string) *Trivia {
	if model == "" {
		model = DefaultTriviaModel
	}
	c := &Trivia{baseClient: newBaseClient(opts), model: model}
	c.authorize = func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ForTitle generates one trivia question about the film. The completion
// must end with the answer digit; anything else is reported as a
// DecodeError so the caller treats the payload as malformed rather than
// the provider as down.
func (c *Trivia) ForTitle(ctx context.Context, title string) (*models.Trivia, error) {
	payload := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: triviaPrompt + "\nFilm: " + title},
		},
		Temperature: 1.5,
		MaxTokens:   130,
	}

	var resp chatCompletionResponse
	if err := c.postJSON(ctx, "/chat/completions", payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, &DecodeError{Provider: c.opts.Provider, Err: fmt.Errorf("completion contained no choices")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if len(content) < 2 {
		return nil, &DecodeError{Provider: c.opts.Provider, Err: fmt.Errorf("completion too short to contain a question")}
	}

	answer := content[len(content)-1:]
	if answer != "1" && answer != "2" && answer != "3" {
		return nil, &DecodeError{Provider: c.opts.Provider, Err: fmt.Errorf("completion did not end with an answer digit")}
	}

	question := strings.TrimSpace(strings.TrimRight(content[:len(content)-1], " \t\n:.,-"))
	return &models.Trivia{Question: question, Answer: answer}, nil
}
