package aiproxy

import (
	"context"
	"iter"
	"strconv"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

var chatMessageRoleEnum = []any{RoleSystem, RoleUser, RoleAssistant, RoleTool}

// ChatMessage is a single message of a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", "assistant" or "tool".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Name optionally identifies the author.
	Name string `json:"name,omitempty"`
}

// ChatCompletionRequest is an OpenAI-compatible chat completion request.
//
// Model is any model id returned by [Client.ListModels]; the gateway routes
// it according to the credential's configuration.
type ChatCompletionRequest struct {
	// Model is the model id. Required.
	Model string `json:"model"`

	// Messages is the conversation so far. At least one is required.
	Messages []ChatMessage `json:"messages"`

	// Temperature is the sampling temperature, between 0 and 2.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens caps the number of generated tokens.
	MaxTokens *int64 `json:"max_tokens,omitempty"`

	// Stream is set by [Client.StreamChatCompletion]; leave it unset.
	Stream bool `json:"stream,omitempty"`

	// User is an end-user identifier forwarded for abuse monitoring.
	User string `json:"user,omitempty"`

	// Metadata is stored with the request log.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate validates this chat completion request.
func (m *ChatCompletionRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.validateModel(formats); err != nil {
		res = append(res, err)
	}
	if err := m.validateMessages(formats); err != nil {
		res = append(res, err)
	}
	if err := m.validateTemperature(formats); err != nil {
		res = append(res, err)
	}
	if err := m.validateMaxTokens(formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *ChatCompletionRequest) validateModel(formats strfmt.Registry) error {
	if err := validate.RequiredString("model", "body", m.Model); err != nil {
		return err
	}
	return nil
}

func (m *ChatCompletionRequest) validateMessages(formats strfmt.Registry) error {
	if err := validate.MinItems("messages", "body", int64(len(m.Messages)), 1); err != nil {
		return err
	}
	for i := range m.Messages {
		path := "messages." + strconv.Itoa(i)
		if err := validate.EnumCase(path+".role", "body", m.Messages[i].Role, chatMessageRoleEnum, true); err != nil {
			return err
		}
		if err := validate.RequiredString(path+".content", "body", m.Messages[i].Content); err != nil {
			return err
		}
	}
	return nil
}

func (m *ChatCompletionRequest) validateTemperature(formats strfmt.Registry) error {
	if m.Temperature == nil {
		return nil
	}
	if err := validate.Minimum("temperature", "body", *m.Temperature, 0, false); err != nil {
		return err
	}
	if err := validate.Maximum("temperature", "body", *m.Temperature, 2, false); err != nil {
		return err
	}
	return nil
}

func (m *ChatCompletionRequest) validateMaxTokens(formats strfmt.Registry) error {
	if m.MaxTokens == nil {
		return nil
	}
	if err := validate.MinimumInt("max_tokens", "body", *m.MaxTokens, 1, false); err != nil {
		return err
	}
	return nil
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// ChatChoice is one completion alternative.
type ChatChoice struct {
	Index        int64       `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletion is the response of [Client.CreateChatCompletion].
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// Content returns the text of the first choice, or "" if there is none.
func (c *ChatCompletion) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// ChatDelta is the incremental part of a streamed choice.
type ChatDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChatChunkChoice is one choice of a streamed chunk.
type ChatChunkChoice struct {
	Index        int64     `json:"index"`
	Delta        ChatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

// ChatCompletionChunk is one event of a streamed chat completion.
type ChatCompletionChunk struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Created int64             `json:"created"`
	Model   string            `json:"model"`
	Choices []ChatChunkChoice `json:"choices"`
	Usage   *Usage            `json:"usage,omitempty"`
}

// CreateChatCompletion sends a chat completion request and waits for the
// full response.
//
//	completion, err := client.CreateChatCompletion(ctx, &aiproxy.ChatCompletionRequest{
//	    Model: "openai/gpt-4o-mini",
//	    Messages: []aiproxy.ChatMessage{
//	        {Role: aiproxy.RoleUser, Content: "Hello!"},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(completion.Content())
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletion, error) {
	if err := validateRequest(req, req == nil); err != nil {
		return nil, err
	}
	body := *req
	body.Stream = false

	var completion ChatCompletion
	if err := c.Post(ctx, "/v1/chat/completions", &body, &completion); err != nil {
		return nil, err
	}
	return &completion, nil
}

// ChatStream yields the chunks of a streamed chat completion.
//
//	stream, err := client.StreamChatCompletion(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for stream.Next() {
//	    fmt.Print(stream.Chunk().Content())
//	}
//	if err := stream.Err(); err != nil {
//	    log.Fatal(err)
//	}
type ChatStream struct {
	stream  *Stream
	current *ChatCompletionChunk
	err     error
}

// Next decodes the next chunk. A payload that is not a valid chunk ends the
// stream with a *[DecodeError].
func (s *ChatStream) Next() bool {
	if s.err != nil || !s.stream.Next() {
		return false
	}
	var chunk ChatCompletionChunk
	if err := jsonConsume([]byte(s.stream.Payload()), &chunk); err != nil {
		s.err = &DecodeError{Status: s.stream.resp.StatusCode, Body: []byte(s.stream.Payload()), Err: err}
		_ = s.stream.Close()
		return false
	}
	s.current = &chunk
	return true
}

// Chunk returns the current chunk.
func (s *ChatStream) Chunk() *ChatCompletionChunk {
	return s.current
}

// Err returns the error that ended the stream, if any.
func (s *ChatStream) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.stream.Err()
}

// Close releases the underlying connection.
func (s *ChatStream) Close() error {
	return s.stream.Close()
}

// All returns an iterator over the remaining chunks, closing the stream when
// the loop ends.
func (s *ChatStream) All() iter.Seq2[*ChatCompletionChunk, error] {
	return func(yield func(*ChatCompletionChunk, error) bool) {
		defer func() { _ = s.Close() }()
		for s.Next() {
			if !yield(s.current, nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Content returns the text delta of the first choice.
func (c *ChatCompletionChunk) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}

// StreamChatCompletion sends a chat completion request with streaming
// enabled. See [Client.Stream] for timeout and cancellation behavior.
func (c *Client) StreamChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatStream, error) {
	if err := validateRequest(req, req == nil); err != nil {
		return nil, err
	}
	body := *req
	body.Stream = true

	stream, err := c.Stream(ctx, "/v1/chat/completions", &body)
	if err != nil {
		return nil, err
	}
	return &ChatStream{stream: stream}, nil
}
