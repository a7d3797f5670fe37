package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/haidershah700/china-pakistan-connect/dto"
	"github.com/haidershah700/china-pakistan-connect/models"
	"github.com/haidershah700/china-pakistan-connect/services"
	"github.com/haidershah700/china-pakistan-connect/utils"
)

// Form field names the site uses for picked files.
var attachmentFields = []string{"files", "images"}

// Room for the text fields and multipart framing on top of the files.
const quotationBodyHeadroom = 1 << 20

// QuotationLimits bounds what one quotation request may carry.
type QuotationLimits struct {
	MaxFiles    int
	MaxFileSize int64
}

// BodyLimit is the cap on the whole request body: one file beyond the count
// limit is read so the validator can report it as skipped.
func (l QuotationLimits) BodyLimit() int64 {
	return int64(l.MaxFiles+1)*l.MaxFileSize + quotationBodyHeadroom
}

// CreateQuotationRequest runs one submission end to end.
// POST /api/quotation-requests
func CreateQuotationRequest(orch *services.SubmissionOrchestrator, guard services.SubmissionGuard, limits QuotationLimits) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limits.BodyLimit())

		var mf *multipart.Form
		if c.ContentType() == binding.MIMEMultipartPOSTForm {
			var err error
			if mf, err = c.MultipartForm(); err != nil {
				if isBodyTooLarge(err) {
					c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request too large"})
					return
				}
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart body", "details": err.Error()})
				return
			}
		}

		var body dto.CreateQuotationRequestDTO
		if err := bindQuotationRequest(c, &body); err != nil {
			if isBodyTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quotation request", "details": err.Error()})
			return
		}
		form := body.ToForm()
		if missing := form.MissingRequired(); len(missing) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(missing, ", ") + " required"})
			return
		}

		release, err := guard.Acquire(ctx, utils.Fingerprint(form.ContactNumber, form.ProductDescription))
		switch {
		case errors.Is(err, services.ErrDuplicateSubmission):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			// The guard is an extra; a broken lock store must not block leads.
			log.Printf("Warning: submission guard unavailable: %v", err)
			release = func() {}
		}
		defer release()

		var candidates []models.AttachmentCandidate
		if mf != nil {
			var err error
			candidates, err = utils.CandidatesFromForm(mf, attachmentFields, limits.MaxFileSize)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not read attachments", "details": err.Error()})
				return
			}
		}

		res := orch.Submit(ctx, form, candidates)
		emailStatus := orch.AwaitEmail(ctx, res)

		if wantsRedirect(c) {
			c.Redirect(http.StatusSeeOther, res.ChatURL)
			return
		}

		c.JSON(http.StatusOK, dto.QuotationResponseDTO{
			ID:            res.ID,
			State:         res.State,
			ChatURL:       res.ChatURL,
			Attachments:   res.Uploaded,
			RejectedCount: res.RejectedCount,
			FailedUploads: res.FailedUploads,
			Email:         emailStatus,
			Notices:       res.Notices,
		})
	}
}

// bindQuotationRequest accepts JSON, a multipart "data" JSON field, or plain
// form fields. Values are trimmed before the binding tags are checked.
func bindQuotationRequest(c *gin.Context, body *dto.CreateQuotationRequestDTO) error {
	switch {
	case c.ContentType() == binding.MIMEJSON:
		if err := json.NewDecoder(c.Request.Body).Decode(body); err != nil {
			return err
		}
	case c.PostForm("data") != "":
		if err := json.Unmarshal([]byte(c.PostForm("data")), body); err != nil {
			return err
		}
	default:
		if err := c.Request.ParseForm(); err != nil {
			return err
		}
		if err := binding.MapFormWithTag(body, c.Request.PostForm, "form"); err != nil {
			return err
		}
	}
	body.TrimSpace()
	return binding.Validator.ValidateStruct(body)
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func wantsRedirect(c *gin.Context) bool {
	if utils.IsTruthy(c.Query("redirect")) {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
