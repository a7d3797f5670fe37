package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func GenerateSlug(name string) string {
	// Normalize accents
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ObjectName builds a unique storage key such as
// "quotations/2025/03/01/1740787200-<uuid>-earbuds.jpg".
func ObjectName(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	base := GenerateSlug(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if len(base) > 48 {
		base = strings.Trim(base[:48], "-")
	}
	if base == "" {
		base = "file"
	}
	now = now.UTC()
	return fmt.Sprintf("%s%s/%d-%s-%s%s",
		prefix, now.Format("2006/01/02"), now.Unix(), uuid.New().String(), base, ext)
}

// IsTruthy accepts the usual query-string spellings of true.
func IsTruthy(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return v == "yes" || v == "on"
	}
	return b
}

// Fingerprint hashes the parts after case and whitespace folding.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		p = strings.Join(strings.Fields(strings.ToLower(p)), " ")
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
