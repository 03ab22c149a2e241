package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Jurgenvdlecq/seatemail/config"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		r.logger.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		r.logger.Debug("exec ok",
			"cmd", name,
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// CommandConverter writes the PDF to a temp file and runs pdftotext on it.
type CommandConverter struct {
	cfg    *config.PDFConfig
	runner Runner
	logger *slog.Logger
}

func NewCommandConverter(cfg *config.PDFConfig, logger *slog.Logger) *CommandConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandConverter{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

func (c *CommandConverter) Text(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	f, err := os.CreateTemp("", "offerte-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("failed to remove temp file", "path", path, "error", err)
		}
	}()

	_, err = io.Copy(f, io.NewSectionReader(r, 0, size))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := c.runner.Run(ctx, c.binary(), "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("pdftotext: %w: %s", err, truncate(msg, 512))
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func (c *CommandConverter) binary() string {
	if c.cfg.Pdftotext == "" {
		return "pdftotext"
	}
	return c.cfg.Pdftotext
}
