package credentials

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

// Selector obtains a fresh key from the operator.
type Selector interface {
	Kind() string
	Select(ctx context.Context) (string, error)
}

var ErrNoSelector = errors.New("no interactive terminal or key helper configured")

// HostSelector runs an operator-configured helper that prints a key on stdout.
type HostSelector struct {
	Command []string
}

func (h HostSelector) Kind() string { return "host" }

func (h HostSelector) Select(ctx context.Context) (string, error) {
	if len(h.Command) == 0 {
		return "", errors.New("key helper command is empty")
	}
	cmd := exec.CommandContext(ctx, h.Command[0], h.Command[1:]...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run key helper: %w", err)
	}
	key := strings.TrimSpace(string(out))
	if key == "" {
		return "", errors.New("key helper printed no key")
	}
	return key, nil
}

// ManualSelector prompts for a key on a terminal.
type ManualSelector struct {
	In  io.Reader
	Out io.Writer
}

func (m ManualSelector) Kind() string { return "manual" }

func (m ManualSelector) Select(ctx context.Context) (string, error) {
	if m.Out != nil {
		fmt.Fprint(m.Out, "Enter Gemini API key: ")
	}
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(m.In).ReadString('\n')
		ch <- result{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		key := strings.TrimSpace(r.line)
		if key == "" {
			if r.err != nil {
				return "", fmt.Errorf("read api key: %w", r.err)
			}
			return "", errors.New("no api key entered")
		}
		return key, nil
	}
}

// NewSelector picks the key selection capability once at startup.
// A helper command wins; otherwise stdin must be a terminal.
func NewSelector(helper string, in *os.File, out io.Writer) (Selector, error) {
	if fields := strings.Fields(helper); len(fields) > 0 {
		return HostSelector{Command: fields}, nil
	}
	if in != nil && isTerminal(in.Fd()) {
		return ManualSelector{In: in, Out: out}, nil
	}
	return nil, ErrNoSelector
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Ensure returns the provider's key, asking the selector for one when none is stored.
func Ensure(ctx context.Context, p Provider, s Selector) (string, error) {
	if key, ok := p.Get(); ok {
		return key, nil
	}
	if s == nil {
		return "", ErrNoSelector
	}
	key, err := s.Select(ctx)
	if err != nil {
		return "", err
	}
	if err := p.Set(key); err != nil && !errors.Is(err, ErrReadOnly) {
		return "", fmt.Errorf("store api key: %w", err)
	}
	return key, nil
}
