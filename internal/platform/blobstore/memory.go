package blobstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type MemoryObject struct {
	ContentType string
	Data        []byte
	Updated     time.Time
}

// Memory is an in-process Store used for local runs and tests.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]MemoryObject
	uploads int
}

func NewMemory(baseURL string) *Memory {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "memory://lectures"
	}
	return &Memory{baseURL: strings.TrimRight(baseURL, "/"), objects: map[string]MemoryObject{}}
}

func (m *Memory) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = CleanKey(key)
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = ContentTypeForKey(key)
	}
	m.mu.Lock()
	m.objects[key] = MemoryObject{ContentType: contentType, Data: data, Updated: time.Now()}
	m.uploads++
	m.mu.Unlock()
	return m.PublicURL(key), nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	flat := make([]Entry, 0, len(m.objects))
	for k, o := range m.objects {
		flat = append(flat, Entry{Key: k, Size: int64(len(o.Data)), Updated: o.Updated})
	}
	m.mu.RUnlock()
	sort.Slice(flat, func(i, j int) bool { return flat[i].Key < flat[j].Key })
	return GroupListing(prefix, flat), nil
}

func (m *Memory) PublicURL(key string) string {
	return m.baseURL + "/" + CleanKey(key)
}

// Object returns a stored object by key.
func (m *Memory) Object(key string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[CleanKey(key)]
	return o, ok
}

// Keys returns every stored key in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Uploads counts Upload calls, including overwrites.
func (m *Memory) Uploads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uploads
}
