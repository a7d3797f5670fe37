package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/haidershah700/china-pakistan-connect/models"
	"github.com/haidershah700/china-pakistan-connect/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullTrace = []models.SubmissionState{
	models.SubmissionIdle,
	models.SubmissionValidating,
	models.SubmissionUploading,
	models.SubmissionNotifyingChat,
	models.SubmissionNotifyingEmail,
	models.SubmissionDone,
}

func newOrchestrator(backend *fakeBackend, relay EmailRelay, settle time.Duration) *SubmissionOrchestrator {
	return NewSubmissionOrchestrator(
		utils.NewFileValidator([]string{"image/jpeg", "image/png", "image/webp", "image/gif"}, 5<<20, 5),
		NewAttachmentUploader(backend, 5),
		NewChatDispatcher("https://wa.me", "+923001234567"),
		NewEmailDispatcher(relay, time.Second),
		settle,
	)
}

func chatText(t *testing.T, res *SubmissionResult) string {
	t.Helper()
	u, err := url.Parse(res.ChatURL)
	require.NoError(t, err)
	return u.Query().Get("text")
}

func noticeTitles(res *SubmissionResult) []string {
	var titles []string
	for _, n := range res.Notices {
		titles = append(titles, n.Title)
	}
	return titles
}

func TestSubmitWithoutFiles(t *testing.T) {
	relay := &fakeRelay{configured: true}
	o := newOrchestrator(&fakeBackend{}, relay, time.Second)

	res := o.Submit(context.Background(), ahmed, nil)

	assert.Equal(t, models.SubmissionDone, res.State)
	assert.Equal(t, fullTrace, res.Trace)
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, res.Uploaded)

	text := chatText(t, res)
	assert.Contains(t, text, "Name: Ahmed\n")
	assert.Contains(t, text, "WhatsApp: +923001112233\n")
	assert.Contains(t, text, "Product: Bluetooth earbuds\n")
	assert.Contains(t, text, "Quantity: 200 pcs\n")
	assert.NotContains(t, text, "Images:")

	assert.Equal(t, models.EmailSent, o.AwaitEmail(context.Background(), res))
	sent := relay.Sent()
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0].AttachmentURL)
	assert.Equal(t, []string{"Quotation Request Sent!", "Email received as well!"}, noticeTitles(res))
	assert.Equal(t, "We'll respond within 2 hours with your detailed quotation.", res.Notices[0].Description)
}

func TestSubmitFiltersFilesBeforeUpload(t *testing.T) {
	backend := &fakeBackend{}
	o := newOrchestrator(backend, &fakeRelay{}, 0)

	res := o.Submit(context.Background(), ahmed, []models.AttachmentCandidate{
		{Name: "a.jpg", MimeType: "image/jpeg", SizeBytes: 1 << 20},
		{Name: "b.png", MimeType: "image/png", SizeBytes: 6 << 20},
		{Name: "c.pdf", MimeType: "application/pdf", SizeBytes: 1 << 20},
		{Name: "d.webp", MimeType: "image/webp", SizeBytes: 2 << 20},
	})

	assert.Equal(t, 2, res.AcceptedCount)
	assert.Equal(t, 2, res.RejectedCount)
	assert.Equal(t, int32(2), backend.calls.Load())
	require.Len(t, res.Uploaded, 2)
	assert.Equal(t, "a.jpg", res.Uploaded[0].SourceFilename)
	assert.Equal(t, "d.webp", res.Uploaded[1].SourceFilename)

	assert.Contains(t, chatText(t, res), "\nImages:\nhttps://files.example.com/a.jpg\nhttps://files.example.com/d.webp\n")
	assert.Equal(t, models.NoticeWarning, res.Notices[0].Level)
	assert.Contains(t, res.Notices[0].Description, "2 file(s) were not attached")
}

func TestSubmitWhenEveryUploadFails(t *testing.T) {
	backend := &fakeBackend{fail: map[string]bool{"a.jpg": true, "b.jpg": true}}
	relay := &fakeRelay{configured: true}
	o := newOrchestrator(backend, relay, time.Second)

	res := o.Submit(context.Background(), ahmed, []models.AttachmentCandidate{image("a.jpg"), image("b.jpg")})

	assert.Equal(t, models.SubmissionDone, res.State)
	assert.Equal(t, fullTrace, res.Trace)
	assert.Empty(t, res.Uploaded)
	assert.Equal(t, 2, res.FailedUploads)
	assert.NotContains(t, chatText(t, res), "Images:")
	assert.Equal(t, []string{"Image upload failed", "Quotation Request Sent!"}, noticeTitles(res))

	o.AwaitEmail(context.Background(), res)
	require.Len(t, relay.Sent(), 1)
	assert.Equal(t, "No images uploaded", relay.Sent()[0].ImageLinks)
}

func TestSubmitPartialUploadFailure(t *testing.T) {
	backend := &fakeBackend{fail: map[string]bool{"b.jpg": true}}
	o := newOrchestrator(backend, &fakeRelay{}, 0)

	res := o.Submit(context.Background(), ahmed, []models.AttachmentCandidate{image("a.jpg"), image("b.jpg")})

	require.Len(t, res.Uploaded, 1)
	assert.Equal(t, 1, res.FailedUploads)
	assert.Contains(t, noticeTitles(res), "Some images failed to upload")
	assert.Contains(t, res.Notices[len(res.Notices)-1].Description, "1 image(s) included.")
}

func TestSubmitWithEmailUnconfigured(t *testing.T) {
	relay := &fakeRelay{configured: false}
	o := newOrchestrator(&fakeBackend{}, relay, time.Second)

	res := o.Submit(context.Background(), ahmed, nil)

	assert.Equal(t, models.SubmissionDone, res.State)
	assert.Equal(t, models.EmailSkipped, o.AwaitEmail(context.Background(), res))
	assert.Empty(t, relay.Sent())
	assert.Equal(t, []string{"Quotation Request Sent!"}, noticeTitles(res))
}

func TestSubmitEmailFailureIsSecondary(t *testing.T) {
	relay := &fakeRelay{configured: true, err: errors.New("relay down")}
	o := newOrchestrator(&fakeBackend{}, relay, time.Second)

	res := o.Submit(context.Background(), ahmed, nil)
	status := o.AwaitEmail(context.Background(), res)

	assert.Equal(t, models.SubmissionDone, res.State)
	assert.Equal(t, models.EmailFailed, status)
	assert.Equal(t, models.NoticeInfo, res.Notices[0].Level)
	last := res.Notices[len(res.Notices)-1]
	assert.Equal(t, models.NoticeError, last.Level)
	assert.Equal(t, "Email failed to send", last.Title)
	assert.Equal(t, "We still received your WhatsApp message.", last.Description)
}

func TestSubmitDoesNotWaitForEmail(t *testing.T) {
	relay := &fakeRelay{configured: true, block: make(chan struct{})}
	defer close(relay.block)
	o := newOrchestrator(&fakeBackend{}, relay, 0)

	res := o.Submit(context.Background(), ahmed, nil)

	assert.Equal(t, models.SubmissionDone, res.State)
	assert.Equal(t, models.EmailPending, o.AwaitEmail(context.Background(), res))
	assert.Equal(t, []string{"Quotation Request Sent!"}, noticeTitles(res))
}

func TestSubmitRunsToCompletionAfterCancel(t *testing.T) {
	relay := &fakeRelay{configured: true}
	o := NewSubmissionOrchestrator(
		utils.NewFileValidator([]string{"image/jpeg"}, 5<<20, 5),
		NewAttachmentUploader(ctxBackend{}, 2),
		NewChatDispatcher("https://wa.me", "+923001234567"),
		NewEmailDispatcher(relay, time.Second),
		time.Second,
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := o.Submit(ctx, ahmed, []models.AttachmentCandidate{image("a.jpg"), image("b.jpg")})

	assert.Equal(t, fullTrace, res.Trace)
	require.Len(t, res.Uploaded, 2)
	assert.Zero(t, res.FailedUploads)
	assert.Equal(t, []string{"Quotation Request Sent!"}, noticeTitles(res))
	assert.Contains(t, chatText(t, res), "Images:\nhttps://files.example.com/a.jpg\nhttps://files.example.com/b.jpg\n")

	assert.Equal(t, models.EmailSent, o.AwaitEmail(context.Background(), res))
	sent := relay.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "https://files.example.com/a.jpg", sent[0].AttachmentURL)
}
