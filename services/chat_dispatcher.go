package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/haidershah700/china-pakistan-connect/models"
)

const (
	chatGreeting = "Hello! I would like a quotation for:"
	chatClosing  = "Please provide me with a detailed quotation including shipping to Pakistan."
)

// ChatDispatcher turns a submission into a WhatsApp click-to-chat link
// addressed to the quotation desk.
type ChatDispatcher struct {
	baseURL   string
	recipient string
}

func NewChatDispatcher(baseURL, recipient string) *ChatDispatcher {
	return &ChatDispatcher{baseURL: baseURL, recipient: recipient}
}

// Dispatch builds the deep link. Opening it is left to the caller.
func (d *ChatDispatcher) Dispatch(form models.SubmissionForm, imageURLs []string) string {
	return DeepLink(d.baseURL, d.recipient, BuildChatMessage(form, imageURLs))
}

// BuildChatMessage renders the prefilled chat text. Required fields always
// appear; blank optional fields and an empty image list are left out.
func BuildChatMessage(form models.SubmissionForm, imageURLs []string) string {
	form = form.Trimmed()

	var b strings.Builder
	b.WriteString(chatGreeting)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Name: %s\n", form.Name)
	if form.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", form.Email)
	}
	fmt.Fprintf(&b, "WhatsApp: %s\n", form.ContactNumber)
	fmt.Fprintf(&b, "Product: %s\n", form.ProductDescription)
	if form.Quantity != "" {
		fmt.Fprintf(&b, "Quantity: %s\n", form.Quantity)
	}
	if form.Notes != "" {
		fmt.Fprintf(&b, "Additional Notes: %s\n", form.Notes)
	}

	urls := nonEmpty(imageURLs)
	if len(urls) > 0 {
		b.WriteString("\nImages:\n")
		for _, u := range urls {
			b.WriteString(u)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(chatClosing)
	return b.String()
}

// DeepLink builds base/phone?text=message with the message percent-encoded
// so that every character, newlines included, survives the round trip.
func DeepLink(baseURL, phone, message string) string {
	base := strings.TrimRight(baseURL, "/")
	phone = strings.Join(strings.Fields(phone), "")
	link := fmt.Sprintf("%s/%s", base, phone)
	if message == "" {
		return link
	}
	return link + "?text=" + encodeComponent(message)
}

// encodeComponent matches browser encodeURIComponent for spaces.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
