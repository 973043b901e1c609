package sftpstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

// remoteFS is the subset of *sftp.Client the store uses.
type remoteFS interface {
	MkdirAll(dir string) error
	Create(p string) (*sftp.File, error)
	PosixRename(oldname, newname string) error
	ReadDir(dir string) ([]os.FileInfo, error)
	Close() error
}

type writeFS interface {
	MkdirAll(dir string) error
	create(p string) (io.WriteCloser, error)
	PosixRename(oldname, newname string) error
	ReadDir(dir string) ([]os.FileInfo, error)
	Close() error
}

type sftpFS struct {
	remoteFS
	ssh *ssh.Client
}

func (f sftpFS) create(p string) (io.WriteCloser, error) { return f.Create(p) }

func (f sftpFS) Close() error {
	err := f.remoteFS.Close()
	if cerr := f.ssh.Close(); err == nil {
		err = cerr
	}
	return err
}

// Store writes blobs to a web root over SFTP and serves them from a public base URL.
type Store struct {
	log     *logger.Logger
	cfg     blobstore.SFTPConfig
	baseURL string

	mu   sync.Mutex
	fs   writeFS
	dial func(ctx context.Context) (writeFS, error)
}

var _ blobstore.Store = (*Store)(nil)

func New(log *logger.Logger, cfg blobstore.Config) (*Store, error) {
	if cfg.Mode != blobstore.ModeSFTP {
		return nil, &blobstore.ConfigError{Code: blobstore.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if err := blobstore.Validate(cfg); err != nil {
		return nil, err
	}
	s := &Store{
		log:     log.With("service", "SFTPStore"),
		cfg:     cfg.SFTP,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
	if s.cfg.Root == "" {
		s.cfg.Root = "/"
	}
	s.dial = s.dialSFTP
	return s, nil
}

func (s *Store) dialSFTP(ctx context.Context) (writeFS, error) {
	addr := s.cfg.Addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "22")
	}
	sshCfg := &ssh.ClientConfig{
		User:            s.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(s.cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         20 * time.Second,
	}

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("sftp: dial error: %w", r.err)
		}
		sshClient = r.client
	}

	cli, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("sftp: new client: %w", err)
	}
	s.log.Info("SFTP connected", "addr", addr, "root", s.cfg.Root)
	return sftpFS{remoteFS: cli, ssh: sshClient}, nil
}

func (s *Store) conn(ctx context.Context) (writeFS, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fs != nil {
		return s.fs, nil
	}
	fs, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	s.fs = fs
	return fs, nil
}

// drop discards a broken connection so the next call redials.
func (s *Store) drop(fs writeFS) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fs == fs {
		_ = fs.Close()
		s.fs = nil
	}
}

func (s *Store) remotePath(key string) string {
	return path.Join(s.cfg.Root, blobstore.CleanKey(key))
}

// Upload writes to a temporary name and renames over the target.
func (s *Store) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	key = blobstore.CleanKey(key)
	if key == "" {
		return "", errors.New("empty object key")
	}
	fs, err := s.conn(ctx)
	if err != nil {
		return "", err
	}
	dst := s.remotePath(key)
	if err := fs.MkdirAll(path.Dir(dst)); err != nil {
		s.drop(fs)
		return "", fmt.Errorf("sftp: mkdir %s: %w", path.Dir(dst), err)
	}
	tmp := dst + ".part"
	w, err := fs.create(tmp)
	if err != nil {
		s.drop(fs)
		return "", fmt.Errorf("sftp: create remote file: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("sftp: upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("sftp: close remote file: %w", err)
	}
	if err := fs.PosixRename(tmp, dst); err != nil {
		return "", fmt.Errorf("sftp: rename %s: %w", dst, err)
	}
	s.log.Debug("Object uploaded", "key", key, "content_type", contentType)
	return s.PublicURL(key), nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]blobstore.Entry, error) {
	fs, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	dir := ""
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		dir = prefix[:i+1]
	}
	infos, err := fs.ReadDir(s.remotePath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []blobstore.Entry{}, nil
		}
		s.drop(fs)
		return nil, fmt.Errorf("sftp: list %s: %w", dir, err)
	}
	out := make([]blobstore.Entry, 0, len(infos))
	for _, fi := range infos {
		name := fi.Name()
		if strings.HasSuffix(name, ".part") {
			continue
		}
		key := dir + name
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if fi.IsDir() {
			out = append(out, blobstore.Entry{Key: key + "/", Prefix: true})
			continue
		}
		out = append(out, blobstore.Entry{Key: key, Size: fi.Size(), Updated: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) PublicURL(key string) string {
	return s.baseURL + "/" + blobstore.CleanKey(key)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fs == nil {
		return nil
	}
	err := s.fs.Close()
	s.fs = nil
	return err
}
