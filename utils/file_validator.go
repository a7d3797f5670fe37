package utils

import (
	"strings"

	"github.com/haidershah700/china-pakistan-connect/models"
)

// FileValidator keeps the candidates that fit the allow-list, the size cap
// and the count cap. It holds no state between calls.
type FileValidator struct {
	allowed     []string
	allowedMime map[string]bool
	wildcards   []string
	maxSize     int64
	maxCount    int
}

func NewFileValidator(allowedMimeTypes []string, maxFileSizeBytes int64, maxFileCount int) *FileValidator {
	v := &FileValidator{
		allowedMime: make(map[string]bool),
		maxSize:     maxFileSizeBytes,
		maxCount:    maxFileCount,
	}
	for _, m := range allowedMimeTypes {
		m = strings.TrimSpace(strings.ToLower(m))
		if m == "" {
			continue
		}
		v.allowed = append(v.allowed, m)
		if strings.HasSuffix(m, "/*") {
			v.wildcards = append(v.wildcards, strings.TrimSuffix(m, "*"))
			continue
		}
		v.allowedMime[m] = true
	}
	return v
}

func (v *FileValidator) MaxFileSizeBytes() int64 { return v.maxSize }
func (v *FileValidator) MaxFileCount() int       { return v.maxCount }

func (v *FileValidator) AllowedMimeTypes() []string {
	return append([]string(nil), v.allowed...)
}

// AllowsMime reports whether mimeType is on the allow-list. Parameters such
// as "; charset=binary" are ignored.
func (v *FileValidator) AllowsMime(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "" {
		return false
	}
	if v.allowedMime[mt] {
		return true
	}
	for _, prefix := range v.wildcards {
		if strings.HasPrefix(mt, prefix) && len(mt) > len(prefix) {
			return true
		}
	}
	return false
}

// Filter applies type, then size, then count, in selection order.
func (v *FileValidator) Filter(candidates []models.AttachmentCandidate) ([]models.AttachmentCandidate, int) {
	accepted := make([]models.AttachmentCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !v.AllowsMime(c.MimeType) {
			continue
		}
		if c.SizeBytes > v.maxSize {
			continue
		}
		if len(accepted) >= v.maxCount {
			break
		}
		accepted = append(accepted, c)
	}
	return accepted, len(candidates) - len(accepted)
}
