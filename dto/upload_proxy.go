package dto

// UploadAttachmentJSONDTO is the base64 variant of the upload proxy body.
// Older clients nest the same fields under "file".
type UploadAttachmentJSONDTO struct {
	Data     string                   `json:"data"`
	Filename string                   `json:"filename"`
	MimeType string                   `json:"mimeType"`
	File     *UploadAttachmentFileDTO `json:"file,omitempty"`
}

type UploadAttachmentFileDTO struct {
	Data     string `json:"data"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
}

// Resolve flattens the nested form and applies the historical defaults.
func (d UploadAttachmentJSONDTO) Resolve() (data, filename, mimeType string) {
	data, filename, mimeType = d.Data, d.Filename, d.MimeType
	if d.File != nil {
		if data == "" {
			data = d.File.Data
		}
		if filename == "" {
			filename = d.File.Filename
		}
		if mimeType == "" {
			mimeType = d.File.MimeType
		}
	}
	if filename == "" {
		filename = "upload"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return data, filename, mimeType
}

type UploadedFileDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	WebViewLink    string `json:"webViewLink,omitempty"`
	WebContentLink string `json:"webContentLink,omitempty"`
}

// UploadAttachmentResponseDTO also carries the flat "links" list that the
// first version of the site read.
type UploadAttachmentResponseDTO struct {
	Success bool              `json:"success"`
	Files   []UploadedFileDTO `json:"files,omitempty"`
	Links   []string          `json:"links,omitempty"`
	Error   string            `json:"error,omitempty"`
}
