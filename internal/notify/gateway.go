// Package notify delivers promotional messages: through an LLM tool-calling
// gateway that sends email and posts tweets, and through optional direct
// channels.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"pulse-ai/internal/apperr"
	"pulse-ai/internal/llm"
)

const (
	ToolSendEmail = "Google.SendEmail"
	ToolPostTweet = "X.PostTweet"

	// ToolChoiceGenerate asks the gateway to run the tools and answer with
	// the generated result rather than returning raw tool calls.
	ToolChoiceGenerate = "generate"

	gatewaySystemPrompt = "You are a helpful assistant that can send emails and tweets."
)

// Gateway drives an OpenAI-compatible tool-calling gateway (Arcade).
type Gateway struct {
	client llm.ToolClient
	userID string
}

// NewGateway builds a gateway. userID is the account the gateway acts as.
func NewGateway(client llm.ToolClient, userID string) *Gateway {
	return &Gateway{client: client, userID: userID}
}

// SendEmail asks the gateway to email message to every recipient.
func (g *Gateway) SendEmail(ctx context.Context, recipients []string, subject, body string) (string, error) {
	if len(recipients) == 0 {
		return "", apperr.Validation("no email recipients")
	}
	prompt := fmt.Sprintf("Send an email to %s with the subject %q and the following body:\n\n%s",
		strings.Join(recipients, ", "), subject, body)
	return g.call(ctx, ToolSendEmail, prompt)
}

// PostTweet asks the gateway to post text as a tweet.
func (g *Gateway) PostTweet(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Post the following tweet exactly as written:\n\n%s", text)
	return g.call(ctx, ToolPostTweet, prompt)
}

func (g *Gateway) call(ctx context.Context, tool, prompt string) (string, error) {
	if g.client == nil {
		return "", apperr.Configuration("tool gateway is not configured")
	}
	resp, err := g.client.GenerateWithTools(ctx,
		[]llm.Message{llm.SystemMessage(gatewaySystemPrompt), llm.UserMessage(prompt)},
		llm.ToolOptions{
			Tools:      llm.NamedTools(tool),
			ToolChoice: ToolChoiceGenerate,
			User:       g.userID,
		})
	if err != nil {
		return "", apperr.Upstream("tool gateway request failed", 0, err)
	}
	logrus.WithFields(logrus.Fields{"tool": tool, "tokens": resp.TotalTokens}).Info("🛠️ Tool gateway answered")
	return resp.Content, nil
}
