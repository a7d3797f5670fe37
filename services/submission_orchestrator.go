package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haidershah700/china-pakistan-connect/models"
	"github.com/haidershah700/china-pakistan-connect/utils"
)

// SubmissionOrchestrator drives one submission through
// Idle → Validating → Uploading → NotifyingChat → NotifyingEmail → Done.
// No stage can fail the submission; the worst case is Done without
// attachments or email.
type SubmissionOrchestrator struct {
	validator  *utils.FileValidator
	uploader   *AttachmentUploader
	chat       *ChatDispatcher
	email      *EmailDispatcher
	settleWait time.Duration
}

func NewSubmissionOrchestrator(
	validator *utils.FileValidator,
	uploader *AttachmentUploader,
	chat *ChatDispatcher,
	email *EmailDispatcher,
	settleWait time.Duration,
) *SubmissionOrchestrator {
	return &SubmissionOrchestrator{
		validator:  validator,
		uploader:   uploader,
		chat:       chat,
		email:      email,
		settleWait: settleWait,
	}
}

type SubmissionResult struct {
	ID            string
	State         models.SubmissionState
	Trace         []models.SubmissionState
	ChatURL       string
	AcceptedCount int
	RejectedCount int
	Uploaded      []models.UploadedAttachment
	FailedUploads int
	Email         *Settlement
	Notices       []models.Notice
}

func (r *SubmissionResult) transition(to models.SubmissionState) {
	log.Printf("submission %s: %s -> %s", r.ID, r.State, to)
	r.State = to
	r.Trace = append(r.Trace, to)
}

func (r *SubmissionResult) notify(level models.NoticeLevel, title, description string) {
	r.Notices = append(r.Notices, models.Notice{Level: level, Title: title, Description: description})
}

// EmailStatus reads the email settlement without blocking.
func (r *SubmissionResult) EmailStatus() models.EmailStatus {
	switch {
	case r.Email == nil || r.Email.WasSkipped():
		return models.EmailSkipped
	case !r.Email.Settled():
		return models.EmailPending
	case r.Email.Err() != nil:
		return models.EmailFailed
	default:
		return models.EmailSent
	}
}

// Submit runs the pipeline to completion. The form is expected to have
// passed field validation already. Cancelling ctx does not stop the run.
func (o *SubmissionOrchestrator) Submit(ctx context.Context, form models.SubmissionForm, candidates []models.AttachmentCandidate) *SubmissionResult {
	ctx = context.WithoutCancel(ctx)
	form = form.Trimmed()
	res := &SubmissionResult{
		ID:       uuid.NewString(),
		State:    models.SubmissionIdle,
		Trace:    []models.SubmissionState{models.SubmissionIdle},
		Uploaded: []models.UploadedAttachment{},
	}

	res.transition(models.SubmissionValidating)
	accepted, rejected := o.validator.Filter(candidates)
	res.AcceptedCount = len(accepted)
	res.RejectedCount = rejected
	if rejected > 0 {
		res.notify(models.NoticeWarning, "Some files were skipped", o.rejectionText(rejected))
	}

	res.transition(models.SubmissionUploading)
	if len(accepted) > 0 {
		report := o.uploader.UploadAll(ctx, accepted)
		res.Uploaded = report.Uploaded
		res.FailedUploads = report.Failed
		switch {
		case len(report.Uploaded) == 0:
			res.notify(models.NoticeError, "Image upload failed", "We'll still submit your request without images.")
		case report.Failed > 0:
			res.notify(models.NoticeWarning, "Some images failed to upload",
				fmt.Sprintf("%d of %d images were attached.", len(report.Uploaded), len(accepted)))
		}
	}
	urls := models.AttachmentURLs(res.Uploaded)

	res.transition(models.SubmissionNotifyingChat)
	res.ChatURL = o.chat.Dispatch(form, urls)

	res.transition(models.SubmissionNotifyingEmail)
	res.Email = o.email.Dispatch(ctx, form, urls)

	res.transition(models.SubmissionDone)
	res.notify(models.NoticeInfo, "Quotation Request Sent!", o.successText(len(urls)))
	return res
}

// AwaitEmail waits up to the configured settle window and records the
// secondary email notice when the send has finished.
func (o *SubmissionOrchestrator) AwaitEmail(ctx context.Context, res *SubmissionResult) models.EmailStatus {
	if res.Email != nil && !res.Email.WasSkipped() {
		res.Email.Wait(ctx, o.settleWait)
	}
	status := res.EmailStatus()
	switch status {
	case models.EmailSent:
		res.notify(models.NoticeInfo, "Email received as well!", "We've also received your request via email.")
	case models.EmailFailed:
		res.notify(models.NoticeError, "Email failed to send", "We still received your WhatsApp message.")
	}
	return status
}

func (o *SubmissionOrchestrator) successText(images int) string {
	text := "We'll respond within 2 hours with your detailed quotation."
	if images > 0 {
		text += fmt.Sprintf(" %d image(s) included.", images)
	}
	return text
}

func (o *SubmissionOrchestrator) rejectionText(rejected int) string {
	kinds := make([]string, 0, len(o.validator.AllowedMimeTypes()))
	for _, m := range o.validator.AllowedMimeTypes() {
		kinds = append(kinds, strings.ToUpper(strings.TrimPrefix(m, "image/")))
	}
	return fmt.Sprintf("%d file(s) were not attached. Only %s files up to %d MB are accepted, at most %d per request.",
		rejected, strings.Join(kinds, ", "), o.validator.MaxFileSizeBytes()>>20, o.validator.MaxFileCount())
}
