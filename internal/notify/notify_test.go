package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"pulse-ai/internal/apperr"
	"pulse-ai/internal/llm"
)

type fakeToolClient struct {
	calls []llm.ToolOptions
	msgs  [][]llm.Message
	err   error
}

func (f *fakeToolClient) Generate(ctx context.Context, m []llm.Message) (llm.Response, error) {
	return f.GenerateWithTools(ctx, m, llm.ToolOptions{})
}

func (f *fakeToolClient) GenerateWithTools(_ context.Context, m []llm.Message, opts llm.ToolOptions) (llm.Response, error) {
	f.calls = append(f.calls, opts)
	f.msgs = append(f.msgs, m)
	return llm.Response{Content: "done"}, f.err
}

func TestGatewaySendEmail(t *testing.T) {
	fc := &fakeToolClient{}
	g := NewGateway(fc, "agent@x.com")

	out, err := g.SendEmail(context.Background(), []string{"a@x.com", "b@x.com"}, "Hi", "Body")
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	require.Len(t, fc.calls, 1)
	assert.Equal(t, ToolChoiceGenerate, fc.calls[0].ToolChoice)
	assert.Equal(t, "agent@x.com", fc.calls[0].User)
	assert.Equal(t, ToolSendEmail, fc.calls[0].Tools[0].Name)
	assert.Equal(t, "system", fc.msgs[0][0].Role)
	assert.Contains(t, fc.msgs[0][1].Content, "a@x.com, b@x.com")
}

func TestGatewayPostTweetError(t *testing.T) {
	g := NewGateway(&fakeToolClient{err: errors.New("401")}, "u")
	_, err := g.PostTweet(context.Background(), "hello")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestGatewayRequiresRecipients(t *testing.T) {
	_, err := NewGateway(&fakeToolClient{}, "u").SendEmail(context.Background(), nil, "s", "b")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGatewayNotConfigured(t *testing.T) {
	_, err := NewGateway(nil, "u").PostTweet(context.Background(), "x")
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
}

type fakeTelegram struct{ sent []tgbotapi.MessageConfig }

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegramChannel(t *testing.T) {
	ft := &fakeTelegram{}
	c := &TelegramChannel{api: ft, chatID: 42}
	require.NoError(t, c.Send(context.Background(), "Subject", "Body"))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, int64(42), ft.sent[0].ChatID)
	assert.Equal(t, "Subject\n\nBody", ft.sent[0].Text)
}

func TestGmailChannel(t *testing.T) {
	var raw string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		var m gmail.Message
		_ = json.NewDecoder(r.Body).Decode(&m)
		decoded, _ := base64.URLEncoding.DecodeString(m.Raw)
		raw = string(decoded)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "m1"}`)
	}))
	defer srv.Close()

	svc, err := gmail.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	c := NewGmailChannel(svc, "pulse@x.com", []string{"a@x.com"})
	require.NoError(t, c.Send(context.Background(), "News", "Hello there"))

	assert.True(t, strings.HasSuffix(path, "/users/me/messages/send"), path)
	assert.Contains(t, raw, "To: a@x.com\r\n")
	assert.Contains(t, raw, "Subject: News\r\n")
	assert.True(t, strings.HasSuffix(raw, "Hello there"))
}
