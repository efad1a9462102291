// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeConverter returns canned text or an error and counts calls.
type fakeConverter struct {
	output string
	err    error
	calls  int
}

func (f *fakeConverter) Convert(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// writePDF creates a placeholder PDF in a temp dir and returns its path.
func writePDF(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestConvertFile(t *testing.T) {
	tests := []struct {
		name       string
		converter  *fakeConverter
		preCreate  bool
		wantStatus Status
		wantLog    string
	}{
		{"successful conversion", &fakeConverter{output: "Provider shall submit Claims."}, false, StatusConverted, "converted:"},
		{"skip up-to-date text", &fakeConverter{output: "unused"}, true, StatusSkipped, "skipped:"},
		{"conversion failure", &fakeConverter{err: errors.New("container crashed")}, false, StatusFailed, "failed:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf := writePDF(t, "TN_contract_01.pdf")
			outDir := filepath.Join(t.TempDir(), "text")

			if tt.preCreate {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					t.Fatal(err)
				}
				txt := TextPath(pdf, outDir)
				if err := os.WriteFile(txt, []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
				future := time.Now().Add(time.Hour)
				if err := os.Chtimes(txt, future, future); err != nil {
					t.Fatal(err)
				}
			}

			var log bytes.Buffer
			status := ConvertFile(context.Background(), tt.converter, pdf, outDir, &log)
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}
			if tt.preCreate && tt.converter.calls != 0 {
				t.Errorf("converter called %d times for an up-to-date file", tt.converter.calls)
			}
		})
	}
}

func TestConvertPaths(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.pdf", "b.pdf"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("pdf"), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "missing.pdf"))

	conv := &selectiveConverter{
		outputs: map[string]string{paths[0]: "A", paths[1]: "B"},
		errors:  map[string]error{paths[2]: errors.New("no such file")},
	}

	outDir := filepath.Join(dir, "text")
	var log bytes.Buffer
	result := ConvertPaths(context.Background(), conv, paths, outDir, &log)

	if result.Converted != 2 || result.Failed != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 2 converted 1 failed", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 3 {
		t.Errorf("total = %d, want 3", result.Total())
	}
	if !strings.Contains(log.String(), "Batch summary:") {
		t.Error("batch output should contain summary line")
	}
	data, err := os.ReadFile(filepath.Join(outDir, "a.txt"))
	if err != nil || string(data) != "A" {
		t.Errorf("a.txt = %q, %v", data, err)
	}
}

func TestCached(t *testing.T) {
	pdf := writePDF(t, "WA_contract.pdf")
	inner := &fakeConverter{output: "text body"}
	c := Cached{Inner: inner, Dir: filepath.Join(t.TempDir(), "cache")}

	for i := 0; i < 2; i++ {
		got, err := c.Convert(context.Background(), pdf)
		if err != nil {
			t.Fatalf("Convert: %v", err)
		}
		if got != "text body" {
			t.Errorf("got %q", got)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner converter called %d times, want 1", inner.calls)
	}

	inner.err = errors.New("boom")
	if _, err := (Cached{Inner: inner, Dir: t.TempDir()}).Convert(context.Background(), pdf); err == nil {
		t.Error("expected error from inner converter")
	}
}

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	images map[string]bool
	output string
	args   []string
}

func (f *fakeRuntime) Name() string { return "docker" }

func (f *fakeRuntime) Available(context.Context) bool { return true }

func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if f.images[image] {
		return nil
	}
	return errors.New("no such image")
}

func (f *fakeRuntime) Run(_ context.Context, _ string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.args = args
	if _, err := io.ReadAll(stdin); err != nil {
		return err
	}
	_, err := stdout.Write([]byte(f.output))
	return err
}

func TestPDFTextConverter(t *testing.T) {
	rt := &fakeRuntime{images: map[string]bool{"pdftotext:latest": true}, output: "Section 1"}

	if _, err := NewPDFTextConverter(context.Background(), rt, "other:latest"); err == nil {
		t.Fatal("expected error for missing image")
	}

	c, err := NewPDFTextConverter(context.Background(), rt, "pdftotext:latest")
	if err != nil {
		t.Fatalf("NewPDFTextConverter: %v", err)
	}

	got, err := c.Convert(context.Background(), writePDF(t, "x.pdf"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != "Section 1" {
		t.Errorf("got %q", got)
	}
	if strings.Join(rt.args, " ") != "-enc UTF-8 - -" {
		t.Errorf("args = %v", rt.args)
	}

	rt.output = ""
	if _, err := c.Convert(context.Background(), writePDF(t, "y.pdf")); err == nil {
		t.Error("expected error for empty output")
	}
	if _, err := c.Convert(context.Background(), "/nonexistent/z.pdf"); err == nil {
		t.Error("expected error for missing file")
	}
}

// selectiveConverter returns different results per file path.
type selectiveConverter struct {
	outputs map[string]string
	errors  map[string]error
}

func (s *selectiveConverter) Convert(_ context.Context, path string) (string, error) {
	if err, ok := s.errors[path]; ok {
		return "", err
	}
	if out, ok := s.outputs[path]; ok {
		return out, nil
	}
	return "", errors.New("unexpected path: " + path)
}
