// Package testing holds fakes and fixtures shared by the package tests.
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

var errWrite = errors.New("write failed")

// FailingWriter rejects every write.
type FailingWriter struct{}

func (FailingWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

// CountingWriter forwards the first n writes to w and fails afterwards.
type CountingWriter struct {
	w     io.Writer
	left  int
	Count int
}

func NewCountingWriter(w io.Writer, n int) *CountingWriter {
	return &CountingWriter{w: w, left: n}
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	if c.left == 0 {
		return 0, errWrite
	}
	c.left--
	c.Count++
	return c.w.Write(p)
}

// RoundTripFunc adapts a function to [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// FailingClient returns an HTTP client whose requests all fail with err.
func FailingClient(err error) *http.Client {
	return &http.Client{Transport: RoundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, err
	})}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("file does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}
