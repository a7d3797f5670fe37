package models

import "strings"

// SubmissionForm is one lead as typed into the quotation form.
type SubmissionForm struct {
	Name               string `json:"name"`
	Email              string `json:"email,omitempty"`
	ContactNumber      string `json:"contactNumber"`
	ProductDescription string `json:"productDescription"`
	Quantity           string `json:"quantity,omitempty"`
	Notes              string `json:"notes,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f SubmissionForm) Trimmed() SubmissionForm {
	return SubmissionForm{
		Name:               strings.TrimSpace(f.Name),
		Email:              strings.TrimSpace(f.Email),
		ContactNumber:      strings.TrimSpace(f.ContactNumber),
		ProductDescription: strings.TrimSpace(f.ProductDescription),
		Quantity:           strings.TrimSpace(f.Quantity),
		Notes:              strings.TrimSpace(f.Notes),
	}
}

// MissingRequired lists the json names of required fields that are blank.
func (f SubmissionForm) MissingRequired() []string {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.ContactNumber) == "" {
		missing = append(missing, "contactNumber")
	}
	if strings.TrimSpace(f.ProductDescription) == "" {
		missing = append(missing, "productDescription")
	}
	return missing
}

// EmailTemplateParams is the field map handed to the email relay template.
// Names match the template variables configured on the relay side.
type EmailTemplateParams struct {
	FullName           string `json:"full_name"`
	WhatsAppNumber     string `json:"whatsapp_number"`
	EmailAddress       string `json:"email_address"`
	ProductDescription string `json:"product_description"`
	QuantityNeeded     string `json:"quantity_needed"`
	AdditionalNotes    string `json:"additional_notes"`
	ImageLinks         string `json:"image_links"`
	AttachmentURL      string `json:"attachment_url,omitempty"`
}
