package services

import (
	"context"
	"sync"

	"github.com/yungbote/lecture-studio/internal/platform/gemini"
)

type fakeGemini struct {
	mu sync.Mutex

	chunks   []gemini.GenerateContentResponse
	generate gemini.GenerateContentResponse
	err      error

	ops         []gemini.Operation
	predictErr  error
	download    []byte
	downloadCT  string
	downloadErr error

	requests    []gemini.GenerateContentRequest
	predicts    []gemini.PredictRequest
	polls       int
	downloadURI string
}

func (f *fakeGemini) GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.generate, f.err
}

func (f *fakeGemini) StreamGenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest, onChunk func(gemini.GenerateContentResponse) error) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	chunks := f.chunks
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGemini) PredictLongRunning(ctx context.Context, model string, req gemini.PredictRequest) (gemini.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.predicts = append(f.predicts, req)
	if f.predictErr != nil {
		return gemini.Operation{}, f.predictErr
	}
	return gemini.Operation{Name: "operations/op-1"}, nil
}

func (f *fakeGemini) GetOperation(ctx context.Context, name string) (gemini.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if len(f.ops) == 0 {
		return gemini.Operation{Name: name}, nil
	}
	op := f.ops[0]
	if len(f.ops) > 1 {
		f.ops = f.ops[1:]
	}
	return op, nil
}

func (f *fakeGemini) Download(ctx context.Context, uri string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadURI = uri
	return f.download, f.downloadCT, f.downloadErr
}

func inlineChunk(mimeType, data string) gemini.GenerateContentResponse {
	return gemini.GenerateContentResponse{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Parts: []gemini.Part{{InlineData: &gemini.Blob{MimeType: mimeType, Data: data}}}},
	}}}
}

func textResponse(text string) gemini.GenerateContentResponse {
	return gemini.GenerateContentResponse{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Parts: []gemini.Part{{Text: text}}},
	}}}
}
