package sftpstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

// localFS stands in for the remote server by mapping remote paths under a temp dir.
type localFS struct {
	root   string
	closed bool
}

func (l *localFS) p(remote string) string { return filepath.Join(l.root, filepath.FromSlash(remote)) }

func (l *localFS) MkdirAll(dir string) error { return os.MkdirAll(l.p(dir), 0o755) }
func (l *localFS) create(p string) (io.WriteCloser, error) {
	return os.Create(l.p(p))
}
func (l *localFS) PosixRename(oldname, newname string) error {
	return os.Rename(l.p(oldname), l.p(newname))
}
func (l *localFS) ReadDir(dir string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(l.p(dir))
	if err != nil {
		return nil, err
	}
	out := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, fi)
	}
	return out, nil
}
func (l *localFS) Close() error { l.closed = true; return nil }

func newTestStore(t *testing.T) (*Store, *localFS) {
	t.Helper()
	s, err := New(logger.Nop(), blobstore.Config{
		Mode:          blobstore.ModeSFTP,
		PublicBaseURL: "https://media.example.com/",
		SFTP:          blobstore.SFTPConfig{Addr: "media.example.com", Root: "/srv/www"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fs := &localFS{root: t.TempDir()}
	dials := 0
	s.dial = func(context.Context) (writeFS, error) {
		dials++
		if dials > 1 {
			t.Fatalf("redialed a healthy connection")
		}
		return fs, nil
	}
	return s, fs
}

func TestUploadWritesUnderRootAndOverwrites(t *testing.T) {
	s, fs := newTestStore(t)
	ctx := context.Background()

	url, err := s.Upload(ctx, "lectures/5/photosynthesis-basics.html", "text/html", strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://media.example.com/lectures/5/photosynthesis-basics.html" {
		t.Fatalf("url: got=%q", url)
	}
	if _, err := s.Upload(ctx, "/lectures/5/photosynthesis-basics.html", "text/html", strings.NewReader("v2")); err != nil {
		t.Fatalf("Upload overwrite: %v", err)
	}
	b, err := os.ReadFile(fs.p("/srv/www/lectures/5/photosynthesis-basics.html"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "v2" {
		t.Fatalf("content: want=%q got=%q", "v2", b)
	}
	if _, err := os.Stat(fs.p("/srv/www/lectures/5/photosynthesis-basics.html.part")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestListReturnsDirsAndFiles(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, k := range []string{"lectures/5/a.html", "lectures/7/b.html", "lectures/readme.txt"} {
		if _, err := s.Upload(ctx, k, "", strings.NewReader("x")); err != nil {
			t.Fatalf("Upload(%q): %v", k, err)
		}
	}
	got, err := s.List(ctx, "lectures/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List: want 3 entries got=%+v", got)
	}
	if got[0].Key != "lectures/5/" || !got[0].Prefix || got[1].Key != "lectures/7/" || got[2].Key != "lectures/readme.txt" || got[2].Prefix {
		t.Fatalf("List: got=%+v", got)
	}
	missing, err := s.List(ctx, "lectures/9/")
	if err != nil || len(missing) != 0 {
		t.Fatalf("List missing: entries=%v err=%v", missing, err)
	}
}

func TestNewRejectsOtherModes(t *testing.T) {
	if _, err := New(logger.Nop(), blobstore.Config{Mode: blobstore.ModeGCS, Bucket: "b"}); err == nil {
		t.Fatalf("New: expected error for gcs mode")
	}
}

func TestCloseReleasesConnection(t *testing.T) {
	s, fs := newTestStore(t)
	if _, err := s.Upload(context.Background(), "a.txt", "", strings.NewReader("x")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fs.closed {
		t.Fatalf("Close did not close the connection")
	}
}
