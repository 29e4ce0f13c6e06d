package aiproxy

import (
	"context"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

var speechFormatEnum = []any{"mp3", "opus", "aac", "flac", "wav", "pcm"}

// SpeechRequest converts text to audio.
type SpeechRequest struct {
	// Model is the text-to-speech model id. Required.
	Model string `json:"model"`

	// Input is the text to synthesize, at most 4096 characters.
	Input string `json:"input"`

	// Voice is the provider voice name. Required.
	Voice string `json:"voice"`

	// ResponseFormat is the audio encoding. Defaults to "mp3".
	ResponseFormat string `json:"response_format,omitempty"`

	// Speed is the playback speed, between 0.25 and 4.
	Speed *float64 `json:"speed,omitempty"`
}

// Validate validates this speech request.
func (m *SpeechRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("model", "body", m.Model); err != nil {
		res = append(res, err)
	}
	if err := validate.RequiredString("input", "body", m.Input); err != nil {
		res = append(res, err)
	} else if err := validate.MaxLength("input", "body", m.Input, 4096); err != nil {
		res = append(res, err)
	}
	if err := validate.RequiredString("voice", "body", m.Voice); err != nil {
		res = append(res, err)
	}
	if m.ResponseFormat != "" {
		if err := validate.EnumCase("response_format", "body", m.ResponseFormat, speechFormatEnum, true); err != nil {
			res = append(res, err)
		}
	}
	if m.Speed != nil {
		if err := validate.Minimum("speed", "body", *m.Speed, 0.25, false); err != nil {
			res = append(res, err)
		}
		if err := validate.Maximum("speed", "body", *m.Speed, 4, false); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// Audio is a binary response body together with its media type.
type Audio struct {
	ContentType string
	Data        []byte
}

// CreateSpeech synthesizes speech and returns the encoded audio.
//
//	audio, err := client.CreateSpeech(ctx, &aiproxy.SpeechRequest{
//	    Model: "openai/tts-1",
//	    Input: "Hello!",
//	    Voice: "alloy",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hello.mp3", audio.Data, 0o644)
func (c *Client) CreateSpeech(ctx context.Context, req *SpeechRequest) (*Audio, error) {
	if err := validateRequest(req, req == nil); err != nil {
		return nil, err
	}
	resp, err := c.PostBinary(ctx, "/v1/audio/speech", req)
	if err != nil {
		return nil, err
	}
	return &Audio{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        resp.Body,
	}, nil
}
