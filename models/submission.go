package models

type SubmissionState string

const (
	SubmissionIdle           SubmissionState = "IDLE"
	SubmissionValidating     SubmissionState = "VALIDATING"
	SubmissionUploading      SubmissionState = "UPLOADING"
	SubmissionNotifyingChat  SubmissionState = "NOTIFYING_CHAT"
	SubmissionNotifyingEmail SubmissionState = "NOTIFYING_EMAIL"
	SubmissionDone           SubmissionState = "DONE"
)

type EmailStatus string

const (
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
	EmailSkipped EmailStatus = "skipped"
	EmailPending EmailStatus = "pending"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing status message, rendered by the site as a toast.
type Notice struct {
	Level       NoticeLevel `json:"level"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}
