package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/lecture-studio/internal/platform/credentials"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

func newTestClient(t *testing.T, creds credentials.Provider, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(logger.Nop(), creds, Options{
		BaseURL:    srv.URL,
		MaxRetries: 2,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.(*client).backoff = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestGenerateContentSendsKeyAndDecodes(t *testing.T) {
	c := newTestClient(t, credentials.NewMemory("AIza-test"), func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "AIza-test" {
			t.Errorf("api key header: got=%q", got)
		}
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"responseMimeType":"application/json"`) {
			t.Errorf("generationConfig not forwarded: %s", body)
		}
		writeJSON(w, 200, `{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}]}`)
	})
	out, err := c.GenerateContent(context.Background(), "gemini-2.5-flash", GenerateContentRequest{
		Contents: UserContent(Part{Text: "hi"}),
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   map[string]any{"type": "OBJECT", "required": []string{"a"}},
		},
	})
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if got := out.Text(); got != `{"a":1}` {
		t.Fatalf("Text: got=%q", got)
	}
}

func TestKeyIsReadPerCall(t *testing.T) {
	creds := credentials.NewMemory("first")
	var seen []string
	hello := GenerateContentRequest{Contents: UserContent(Part{Text: "hi"})}
	c := newTestClient(t, creds, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("x-goog-api-key"))
		writeJSON(w, 200, `{"candidates":[]}`)
	})
	if _, err := c.GenerateContent(context.Background(), "m", hello); err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if err := creds.Set("second"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := c.GenerateContent(context.Background(), "m", hello); err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if strings.Join(seen, ",") != "first,second" {
		t.Fatalf("keys sent: got=%v", seen)
	}
}

func TestMissingKey(t *testing.T) {
	c := newTestClient(t, credentials.NewMemory(""), func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request sent without key: %s", r.URL.Path)
	})
	if _, err := c.GenerateContent(context.Background(), "m", GenerateContentRequest{}); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("want ErrMissingKey got=%v", err)
	}
	if _, _, err := c.Download(context.Background(), "https://x.test/v1beta/files/abc:download?alt=media"); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("Download: want ErrMissingKey got=%v", err)
	}
}

func TestRetriesOn503ThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, credentials.NewMemory("k"), func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/veo:predictLongRunning") {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		if calls.Add(1) == 1 {
			writeJSON(w, 503, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"prompt":"a leaf"`) || !strings.Contains(string(body), `"bytesBase64Encoded":"aGk="`) {
			t.Errorf("video request: %s", body)
		}
		writeJSON(w, 200, `{"name":"operations/abc","done":false}`)
	})
	op, err := c.PredictLongRunning(context.Background(), "veo", PredictRequest{
		Instances:  []VideoInstance{{Prompt: "a leaf", Image: &VideoImage{BytesBase64Encoded: "aGk=", MimeType: "image/png"}}},
		Parameters: VideoParameters{SampleCount: 1, AspectRatio: "16:9"},
	})
	if err != nil {
		t.Fatalf("PredictLongRunning: %v", err)
	}
	if op.Name != "operations/abc" || calls.Load() != 2 {
		t.Fatalf("op=%+v calls=%d", op, calls.Load())
	}
}

func TestNonRetryableErrorCarriesMessage(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, credentials.NewMemory("k"), func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 404, `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`)
	})
	_, err := c.GetOperation(context.Background(), "operations/abc")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError got=%v", err)
	}
	if apiErr.StatusCode != 404 || !strings.Contains(err.Error(), "Requested entity was not found.") {
		t.Fatalf("error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls: want=1 got=%d", calls.Load())
	}
}

func TestGetOperationMapsVideosAndErrors(t *testing.T) {
	c := newTestClient(t, credentials.NewMemory("k"), func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1beta/operations/done":
			writeJSON(w, 200, `{"name":"operations/done","done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"https://g.test/v1beta/files/vid1:download?alt=media"}}]}}}`)
		case "/v1beta/operations/failed":
			writeJSON(w, 200, `{"name":"operations/failed","done":true,"error":{"code":3,"message":"prompt rejected"}}`)
		default:
			t.Errorf("path: got=%q", r.URL.Path)
		}
	})
	op, err := c.GetOperation(context.Background(), "operations/done")
	if err != nil {
		t.Fatalf("GetOperation: %v", err)
	}
	if !op.Done || op.VideoURI() != "https://g.test/v1beta/files/vid1:download?alt=media" {
		t.Fatalf("done op: %+v uri=%q", op, op.VideoURI())
	}
	op, err = c.GetOperation(context.Background(), "operations/failed")
	if err != nil {
		t.Fatalf("GetOperation: %v", err)
	}
	if op.Error == nil || op.Error.Code != 3 || op.Error.Message != "prompt rejected" {
		t.Fatalf("failed op: %+v", op.Error)
	}
}

func TestStreamGenerateContentDeliversChunksInOrder(t *testing.T) {
	stream := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"inlineData\":{\"mimeType\":\"audio/L16;rate=24000\",\"data\":\"AAE=\"}}]}}]}\n\n" +
		"data: {\"candidates\":[{\"content\":{\"parts\":[{\"inlineData\":{\"mimeType\":\"audio/L16;rate=24000\",\"data\":\"AgM=\"}}]}}]}\n\n" +
		"data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"tail\"}]}}]}"
	c := newTestClient(t, credentials.NewMemory("k"), func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("alt: got=%q", r.URL.Query().Get("alt"))
		}
		if !strings.HasSuffix(r.URL.Path, "/models/tts:streamGenerateContent") {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, stream)
	})
	var got []string
	err := c.StreamGenerateContent(context.Background(), "tts", GenerateContentRequest{
		Contents: UserContent(Part{Text: "read this"}),
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       &SpeechConfig{VoiceConfig: VoiceConfig{PrebuiltVoiceConfig: PrebuiltVoiceConfig{VoiceName: "Kore"}}},
		},
	}, func(chunk GenerateContentResponse) error {
		for _, b := range chunk.InlineData() {
			got = append(got, b.Data)
		}
		if txt := chunk.Text(); txt != "" {
			got = append(got, txt)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("StreamGenerateContent: %v", err)
	}
	if strings.Join(got, ",") != "AAE=,AgM=,tail" {
		t.Fatalf("chunks: got=%v", got)
	}
}

func TestStreamCallbackErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, credentials.NewMemory("k"), func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"x\"}]}}]}\n\n")
	})
	stop := errors.New("stop")
	err := c.StreamGenerateContent(context.Background(), "m", GenerateContentRequest{Contents: UserContent(Part{Text: "hi"})}, func(GenerateContentResponse) error { return stop })
	if !errors.Is(err, stop) {
		t.Fatalf("want callback error got=%v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls: want=1 got=%d", calls.Load())
	}
}

func TestDownloadFetchesFileByName(t *testing.T) {
	mp4 := "\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"
	c := newTestClient(t, credentials.NewMemory("AIza-dl"), func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/files/abc:download" || r.URL.Query().Get("alt") != "media" {
			t.Errorf("download url: got=%s", r.URL)
		}
		if r.Header.Get("x-goog-api-key") != "AIza-dl" {
			t.Errorf("api key header: got=%q", r.Header.Get("x-goog-api-key"))
		}
		_, _ = io.WriteString(w, mp4)
	})
	b, ct, err := c.Download(context.Background(), "https://generativelanguage.googleapis.com/v1beta/files/abc:download?alt=media")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(b) != mp4 || ct != "video/mp4" {
		t.Fatalf("Download: len=%d ct=%q", len(b), ct)
	}
}

func TestDownloadErrorEnvelope(t *testing.T) {
	c := newTestClient(t, credentials.NewMemory("k"), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 403, `{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`)
	})
	_, _, err := c.Download(context.Background(), "https://g.test/v1beta/files/abc:download?alt=media")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 403 {
		t.Fatalf("want 403 *APIError got=%v", err)
	}
	if _, _, err := c.Download(context.Background(), "https://g.test/video.mp4"); err == nil {
		t.Fatalf("Download: expected error for a uri without files/")
	}
}

func TestOperationVideoURI(t *testing.T) {
	op := Operation{Done: true, Response: &OperationResponse{}}
	var v GeneratedVideo
	v.Video.URI = " https://b/v "
	op.Response.GeneratedVideos = []GeneratedVideo{{}, v}
	if op.VideoURI() != "https://b/v" {
		t.Fatalf("VideoURI: got=%q", op.VideoURI())
	}
	if (Operation{Done: true}).VideoURI() != "" {
		t.Fatalf("empty VideoURI: want empty")
	}
}
