package gemini

import "strings"

// Blob carries base64 text, the form media payloads take on the wire.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig PrebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type SpeechConfig struct {
	VoiceConfig VoiceConfig `json:"voiceConfig"`
}

type ImageConfig struct {
	ImageSize   string `json:"imageSize,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type GenerationConfig struct {
	ResponseModalities []string       `json:"responseModalities,omitempty"`
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any `json:"responseSchema,omitempty"`
	SpeechConfig       *SpeechConfig  `json:"speechConfig,omitempty"`
	ImageConfig        *ImageConfig   `json:"imageConfig,omitempty"`
}

type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Text concatenates every text part of every candidate.
func (r GenerateContentResponse) Text() string {
	var b strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// InlineData returns the inline blobs carrying data, in order.
func (r GenerateContentResponse) InlineData() []Blob {
	var out []Blob
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				out = append(out, *p.InlineData)
			}
		}
	}
	return out
}

// UserContent builds a single user turn from parts.
func UserContent(parts ...Part) []Content {
	return []Content{{Role: "user", Parts: parts}}
}

type VideoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type VideoInstance struct {
	Prompt string      `json:"prompt"`
	Image  *VideoImage `json:"image,omitempty"`
}

type VideoParameters struct {
	SampleCount int    `json:"sampleCount,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type PredictRequest struct {
	Instances  []VideoInstance `json:"instances"`
	Parameters VideoParameters `json:"parameters"`
}

type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type GeneratedVideo struct {
	Video struct {
		URI string `json:"uri"`
	} `json:"video"`
}

type OperationResponse struct {
	GeneratedVideos []GeneratedVideo `json:"generatedVideos,omitempty"`
}

// Operation is a long-running job handle.
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *OperationError    `json:"error,omitempty"`
	Response *OperationResponse `json:"response,omitempty"`
}

// VideoURI returns the first generated video's retrieval URI, or "".
func (o Operation) VideoURI() string {
	if o.Response == nil {
		return ""
	}
	for _, v := range o.Response.GeneratedVideos {
		if u := strings.TrimSpace(v.Video.URI); u != "" {
			return u
		}
	}
	return ""
}
