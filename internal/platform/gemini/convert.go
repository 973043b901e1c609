package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/lecture-studio/internal/platform/mediacodec"
)

func toSDKContents(in []Content) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(in))
	for _, c := range in {
		sc := &genai.Content{Role: c.Role}
		for _, p := range c.Parts {
			sp := &genai.Part{Text: p.Text}
			if p.InlineData != nil {
				raw, err := mediacodec.DecodeBase64(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("gemini: inline %s data: %w", p.InlineData.MimeType, err)
				}
				sp.InlineData = &genai.Blob{MIMEType: p.InlineData.MimeType, Data: raw}
			}
			sc.Parts = append(sc.Parts, sp)
		}
		out = append(out, sc)
	}
	return out, nil
}

func toSDKConfig(gc *GenerationConfig) (*genai.GenerateContentConfig, error) {
	if gc == nil {
		return nil, nil
	}
	out := &genai.GenerateContentConfig{
		ResponseModalities: gc.ResponseModalities,
		ResponseMIMEType:   gc.ResponseMimeType,
	}
	if len(gc.ResponseSchema) > 0 {
		raw, err := json.Marshal(gc.ResponseSchema)
		if err != nil {
			return nil, fmt.Errorf("gemini: encode response schema: %w", err)
		}
		var schema genai.Schema
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil, fmt.Errorf("gemini: response schema: %w", err)
		}
		out.ResponseSchema = &schema
	}
	if sc := gc.SpeechConfig; sc != nil {
		out.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: sc.VoiceConfig.PrebuiltVoiceConfig.VoiceName},
			},
		}
	}
	if ic := gc.ImageConfig; ic != nil {
		out.ImageConfig = &genai.ImageConfig{ImageSize: ic.ImageSize, AspectRatio: ic.AspectRatio}
	}
	return out, nil
}

func fromSDKResponse(in *genai.GenerateContentResponse) GenerateContentResponse {
	var out GenerateContentResponse
	if in == nil {
		return out
	}
	for _, c := range in.Candidates {
		if c == nil {
			continue
		}
		cand := Candidate{FinishReason: string(c.FinishReason)}
		if c.Content != nil {
			cand.Content.Role = c.Content.Role
			for _, p := range c.Content.Parts {
				if p == nil || p.Thought {
					continue
				}
				part := Part{Text: p.Text}
				if p.InlineData != nil && len(p.InlineData.Data) > 0 {
					part.InlineData = &Blob{MimeType: p.InlineData.MIMEType, Data: mediacodec.EncodeBase64(p.InlineData.Data)}
				}
				cand.Content.Parts = append(cand.Content.Parts, part)
			}
		}
		out.Candidates = append(out.Candidates, cand)
	}
	return out
}

// toSDKVideo maps the first instance of req: the model takes one prompt and one optional seed frame.
func toSDKVideo(req PredictRequest) (*genai.GenerateVideosSource, *genai.GenerateVideosConfig, error) {
	if len(req.Instances) == 0 {
		return nil, nil, fmt.Errorf("gemini: video request has no instance")
	}
	inst := req.Instances[0]
	src := &genai.GenerateVideosSource{Prompt: inst.Prompt}
	if inst.Image != nil {
		raw, err := mediacodec.DecodeBase64(inst.Image.BytesBase64Encoded)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini: seed image: %w", err)
		}
		src.Image = &genai.Image{ImageBytes: raw, MIMEType: inst.Image.MimeType}
	}
	cfg := &genai.GenerateVideosConfig{
		NumberOfVideos: int32(req.Parameters.SampleCount),
		Resolution:     req.Parameters.Resolution,
		AspectRatio:    req.Parameters.AspectRatio,
	}
	return src, cfg, nil
}

func fromSDKOperation(in *genai.GenerateVideosOperation) Operation {
	if in == nil {
		return Operation{}
	}
	out := Operation{Name: in.Name, Done: in.Done}
	if len(in.Error) > 0 {
		oe := &OperationError{}
		if code, ok := in.Error["code"].(float64); ok {
			oe.Code = int(code)
		}
		if msg, ok := in.Error["message"].(string); ok {
			oe.Message = strings.TrimSpace(msg)
		}
		out.Error = oe
	}
	if in.Response != nil {
		out.Response = &OperationResponse{}
		for _, gv := range in.Response.GeneratedVideos {
			if gv == nil || gv.Video == nil {
				continue
			}
			var v GeneratedVideo
			v.Video.URI = gv.Video.URI
			out.Response.GeneratedVideos = append(out.Response.GeneratedVideos, v)
		}
		if out.Done && out.Error == nil && len(out.Response.GeneratedVideos) == 0 && len(in.Response.RAIMediaFilteredReasons) > 0 {
			out.Error = &OperationError{Message: strings.Join(in.Response.RAIMediaFilteredReasons, "; ")}
		}
	}
	return out
}

// fromSDKError converts SDK API failures into *APIError so callers and retries see one shape.
func fromSDKError(err error) error {
	if err == nil {
		return nil
	}
	var ge genai.APIError
	if !errors.As(err, &ge) {
		return err
	}
	out := &APIError{StatusCode: ge.Code, Status: ge.Status, Message: strings.TrimSpace(ge.Message), err: err}
	for _, d := range ge.Details {
		if t, _ := d["@type"].(string); strings.HasSuffix(t, "google.rpc.RetryInfo") {
			out.RetryDelay, _ = d["retryDelay"].(string)
		}
	}
	return out
}
