package controllers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/haidershah700/china-pakistan-connect/dto"
	"github.com/haidershah700/china-pakistan-connect/models"
	"github.com/haidershah700/china-pakistan-connect/utils"
)

// UploadProxyLimits mirrors the limits the old serverless functions enforced.
type UploadProxyLimits struct {
	MaxFiles    int
	MaxFileSize int64
}

const msgFileTooLarge = "File too large"

type proxyError struct {
	status int
	msg    string
}

func (e *proxyError) Error() string { return e.msg }

func proxyFail(c *gin.Context, status int, msg string) {
	c.JSON(status, dto.UploadAttachmentResponseDTO{Success: false, Error: msg})
}

// SetProxyCORSHeaders writes the wide-open CORS headers the upload
// functions have always sent.
func SetProxyCORSHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// UploadProxy serves every method on the proxy paths: OPTIONS is the
// preflight, POST uploads, anything else is 405.
func UploadProxy(backend utils.UploadBackend, limits UploadProxyLimits) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetProxyCORSHeaders(c)

		switch c.Request.Method {
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
			return
		case http.MethodPost:
		default:
			proxyFail(c, http.StatusMethodNotAllowed, "Method Not Allowed")
			return
		}

		files, err := readProxyFiles(c, limits)
		if err != nil {
			var pe *proxyError
			if errors.As(err, &pe) {
				proxyFail(c, pe.status, pe.msg)
				return
			}
			proxyFail(c, http.StatusBadRequest, err.Error())
			return
		}
		if len(files) == 0 {
			proxyFail(c, http.StatusBadRequest, "No files received")
			return
		}

		ctx := c.Request.Context()
		resp := dto.UploadAttachmentResponseDTO{Success: true}
		for _, f := range files {
			att, err := backend.Upload(ctx, f)
			if err != nil {
				if utils.IsConfigError(err) {
					log.Printf("Upload proxy misconfigured (%s): %v", backend.Name(), err)
				} else {
					log.Printf("Upload proxy: %s via %s failed: %v", f.Name, backend.Name(), err)
				}
				proxyFail(c, http.StatusInternalServerError, err.Error())
				return
			}
			resp.Files = append(resp.Files, dto.UploadedFileDTO{
				ID:             att.ID,
				Name:           f.Name,
				WebViewLink:    att.WebViewLink,
				WebContentLink: att.WebContentLink,
			})
			resp.Links = append(resp.Links, att.URL)
		}

		c.JSON(http.StatusOK, resp)
	}
}

func readProxyFiles(c *gin.Context, limits UploadProxyLimits) ([]models.AttachmentCandidate, error) {
	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "multipart/form-data":
		return readMultipartFiles(c, limits)
	case "application/json":
		f, err := readJSONFile(c, limits)
		if err != nil {
			return nil, err
		}
		return []models.AttachmentCandidate{f}, nil
	default:
		return nil, &proxyError{http.StatusBadRequest, "Content-Type must be multipart/form-data or application/json"}
	}
}

// readMultipartFiles streams the body part by part. Every file part counts,
// whatever its field name. Reading stops at MaxFiles; the rest of the body
// is left unread.
func readMultipartFiles(c *gin.Context, limits UploadProxyLimits) ([]models.AttachmentCandidate, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(limits.MaxFiles+1)*limits.MaxFileSize)

	mr, err := c.Request.MultipartReader()
	if err != nil {
		return nil, &proxyError{http.StatusBadRequest, "invalid multipart body"}
	}

	files := make([]models.AttachmentCandidate, 0, limits.MaxFiles)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, &proxyError{http.StatusRequestEntityTooLarge, msgFileTooLarge}
			}
			return nil, &proxyError{http.StatusBadRequest, "invalid multipart body"}
		}
		if part.FileName() == "" {
			_, _ = io.Copy(io.Discard, part)
			part.Close()
			continue
		}
		if len(files) >= limits.MaxFiles {
			part.Close()
			break
		}

		data, err := io.ReadAll(io.LimitReader(part, limits.MaxFileSize+1))
		part.Close()
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, &proxyError{http.StatusRequestEntityTooLarge, msgFileTooLarge}
			}
			return nil, &proxyError{http.StatusBadRequest, fmt.Sprintf("read %s: %v", part.FileName(), err)}
		}
		if int64(len(data)) > limits.MaxFileSize {
			return nil, &proxyError{http.StatusRequestEntityTooLarge, msgFileTooLarge}
		}

		files = append(files, models.AttachmentCandidate{
			Name:      filepath.Base(part.FileName()),
			MimeType:  utils.DetectMime(part.Header.Get("Content-Type"), data),
			SizeBytes: int64(len(data)),
			Data:      data,
		})
	}
	return files, nil
}

func readJSONFile(c *gin.Context, limits UploadProxyLimits) (models.AttachmentCandidate, error) {
	// base64 inflates by a third
	body := http.MaxBytesReader(c.Writer, c.Request.Body, limits.MaxFileSize*4/3+64<<10)

	var in dto.UploadAttachmentJSONDTO
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return models.AttachmentCandidate{}, &proxyError{http.StatusRequestEntityTooLarge, msgFileTooLarge}
		}
		return models.AttachmentCandidate{}, &proxyError{http.StatusBadRequest, "invalid JSON body"}
	}

	data, filename, mimeType := in.Resolve()
	if data == "" {
		return models.AttachmentCandidate{}, &proxyError{http.StatusBadRequest, "Missing file data. Provide { data, filename, mimeType }."}
	}

	raw, err := decodeBase64Payload(data)
	if err != nil {
		return models.AttachmentCandidate{}, &proxyError{http.StatusBadRequest, "file data is not valid base64"}
	}
	if int64(len(raw)) > limits.MaxFileSize {
		return models.AttachmentCandidate{}, &proxyError{http.StatusRequestEntityTooLarge, msgFileTooLarge}
	}

	return models.AttachmentCandidate{
		Name:      filepath.Base(filename),
		MimeType:  utils.DetectMime(mimeType, raw),
		SizeBytes: int64(len(raw)),
		Data:      raw,
	}, nil
}

// decodeBase64Payload accepts plain base64 and "data:<mime>;base64," URLs.
func decodeBase64Payload(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
