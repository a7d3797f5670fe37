package models

// AttachmentCandidate is a file picked by the user, held in memory for a
// single submission attempt.
type AttachmentCandidate struct {
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Data      []byte `json:"-"`
}

// UploadedAttachment is a candidate that reached storage and has a public URL.
type UploadedAttachment struct {
	ID             string `json:"id,omitempty"`
	URL            string `json:"url"`
	SourceFilename string `json:"sourceFilename"`
	WebViewLink    string `json:"webViewLink,omitempty"`
	WebContentLink string `json:"webContentLink,omitempty"`
}

// AttachmentURLs keeps order and drops empty URLs.
func AttachmentURLs(atts []UploadedAttachment) []string {
	urls := make([]string, 0, len(atts))
	for _, a := range atts {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	return urls
}
