package dto

import (
	"strings"

	"github.com/haidershah700/china-pakistan-connect/models"
)

// CreateQuotationRequestDTO accepts both the JSON "data" field and plain
// form fields. The site historically posted the contact number as
// "whatsapp", so either name is accepted.
type CreateQuotationRequestDTO struct {
	Name               string `json:"name"               form:"name"               binding:"required,max=200"`
	Email              string `json:"email"              form:"email"              binding:"omitempty,email,max=255"`
	ContactNumber      string `json:"contactNumber"      form:"contactNumber"      binding:"required_without=WhatsApp,max=40"`
	WhatsApp           string `json:"whatsapp"           form:"whatsapp"           binding:"required_without=ContactNumber,max=40"`
	ProductDescription string `json:"productDescription" form:"productDescription" binding:"required,max=8000"`
	Quantity           string `json:"quantity"           form:"quantity"           binding:"max=500"`
	Notes              string `json:"notes"              form:"notes"              binding:"max=4000"`
}

func (d *CreateQuotationRequestDTO) TrimSpace() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.ContactNumber = strings.TrimSpace(d.ContactNumber)
	d.WhatsApp = strings.TrimSpace(d.WhatsApp)
	d.ProductDescription = strings.TrimSpace(d.ProductDescription)
	d.Quantity = strings.TrimSpace(d.Quantity)
	d.Notes = strings.TrimSpace(d.Notes)
}

func (d CreateQuotationRequestDTO) ToForm() models.SubmissionForm {
	contact := d.ContactNumber
	if contact == "" {
		contact = d.WhatsApp
	}
	return models.SubmissionForm{
		Name:               d.Name,
		Email:              d.Email,
		ContactNumber:      contact,
		ProductDescription: d.ProductDescription,
		Quantity:           d.Quantity,
		Notes:              d.Notes,
	}.Trimmed()
}

type QuotationResponseDTO struct {
	ID            string                      `json:"id"`
	State         models.SubmissionState      `json:"state"`
	ChatURL       string                      `json:"chatUrl"`
	Attachments   []models.UploadedAttachment `json:"attachments"`
	RejectedCount int                         `json:"rejectedCount"`
	FailedUploads int                         `json:"failedUploads"`
	Email         models.EmailStatus          `json:"email"`
	Notices       []models.Notice             `json:"notices"`
}
