// Package pdftext turns uploaded policy PDFs into plain text for the
// extractor.
package pdftext

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyPayload is returned for an empty upload
	ErrEmptyPayload = errors.New("empty payload")
	// ErrNotPDF is returned when the payload lacks the %PDF signature
	ErrNotPDF = errors.New("payload is not a PDF document")
	// ErrInvalidBase64 is returned when the upload cannot be decoded
	ErrInvalidBase64 = errors.New("invalid base64 payload")
)

// Backend names accepted by New
const (
	BackendNative    = "native"
	BackendPdftotext = "pdftotext"
)

// Converter extracts the text layer of a PDF document.
// The pdf bytes must not be retained after Text returns.
type Converter interface {
	Text(ctx context.Context, pdf []byte) (string, error)

	// Name returns the backend name for logging
	Name() string
}

// Options configures New
type Options struct {
	Backend       string
	PdftotextPath string
	Timeout       time.Duration
}

// New returns the converter selected by opts.Backend
func New(opts Options) (Converter, error) {
	switch opts.Backend {
	case "", BackendNative:
		return NewNativeConverter(), nil
	case BackendPdftotext:
		return NewCommandConverter(opts.PdftotextPath, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", opts.Backend)
	}
}

var pdfSignature = []byte("%PDF")

// CheckSignature reports ErrEmptyPayload or ErrNotPDF for payloads that
// cannot be a PDF document.
func CheckSignature(pdf []byte) error {
	if len(pdf) == 0 {
		return ErrEmptyPayload
	}
	// some generators emit a few junk bytes before the header
	head := pdf
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, pdfSignature) {
		return ErrNotPDF
	}
	return nil
}

// DecodeBase64 decodes an uploaded document. It accepts standard and
// URL-safe alphabets with or without padding, embedded whitespace and a
// leading data URI prefix such as "data:application/pdf;base64,".
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, ErrEmptyPayload
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if b, err := enc.DecodeString(s); err == nil {
			if len(b) == 0 {
				return nil, ErrEmptyPayload
			}
			return b, nil
		}
	}
	return nil, ErrInvalidBase64
}

// ZeroBytes overwrites a byte slice with zeros
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
