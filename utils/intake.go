package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/haidershah700/china-pakistan-connect/models"
)

const genericMime = "application/octet-stream"

// DetectMime prefers the declared type and sniffs the content when the
// browser sent nothing useful.
func DetectMime(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && declared != genericMime {
		return declared
	}
	if len(data) == 0 {
		if declared == "" {
			return genericMime
		}
		return declared
	}
	return mimetype.Detect(data).String()
}

// CandidateFromFileHeader loads one multipart part into memory. Parts larger
// than readLimit are described but not read; the validator drops them anyway.
func CandidateFromFileHeader(fh *multipart.FileHeader, readLimit int64) (models.AttachmentCandidate, error) {
	c := models.AttachmentCandidate{
		Name:      filepath.Base(fh.Filename),
		SizeBytes: fh.Size,
	}
	declared := fh.Header.Get("Content-Type")
	if fh.Size > readLimit {
		c.MimeType = DetectMime(declared, nil)
		return c, nil
	}

	f, err := fh.Open()
	if err != nil {
		return c, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, readLimit+1))
	if err != nil {
		return c, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	c.Data = data
	c.SizeBytes = int64(len(data))
	c.MimeType = DetectMime(declared, data)
	return c, nil
}

// CandidatesFromForm collects every file part under the given field names,
// in the order the browser sent them.
func CandidatesFromForm(form *multipart.Form, fields []string, readLimit int64) ([]models.AttachmentCandidate, error) {
	if form == nil {
		return nil, nil
	}
	out := make([]models.AttachmentCandidate, 0)
	for _, field := range fields {
		for _, fh := range form.File[field] {
			c, err := CandidateFromFileHeader(fh, readLimit)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}
