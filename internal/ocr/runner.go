// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pdiddy/council-minutes/internal/container"
)

// Runner executes an external tool with piped stdin and stdout.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// LocalRunner runs tools found on PATH.
type LocalRunner struct{}

// Run executes name with args. Stderr output is folded into the error.
func (LocalRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

// ContainerRunner runs tools inside a container image through docker or
// podman. Inputs travel over stdin, so no volume mounts are needed.
type ContainerRunner struct {
	runtime container.Runtime
	image   string
}

// NewContainerRunner verifies that image exists in rt before returning.
func NewContainerRunner(rt container.Runtime, image string) (*ContainerRunner, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("OCR image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerRunner{runtime: rt, image: image}, nil
}

// Run executes name with args inside a fresh container.
func (c *ContainerRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	command := append([]string{name}, args...)
	return c.runtime.Run(ctx, c.image, command, stdin, stdout)
}
