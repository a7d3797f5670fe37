package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haidershah700/china-pakistan-connect/models"
)

type fakeBackend struct {
	fail  map[string]bool
	delay time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
	calls     atomic.Int32
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Upload(ctx context.Context, file models.AttachmentCandidate) (models.UploadedAttachment, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[file.Name] {
		return models.UploadedAttachment{}, errors.New("storage unavailable")
	}
	return models.UploadedAttachment{
		ID:  "id-" + file.Name,
		URL: "https://files.example.com/" + file.Name,
	}, nil
}

type fakeRelay struct {
	configured bool
	err        error
	block      chan struct{}

	mu   sync.Mutex
	sent []models.EmailTemplateParams
}

func (r *fakeRelay) Name() string     { return "fake" }
func (r *fakeRelay) Configured() bool { return r.configured }

func (r *fakeRelay) Send(ctx context.Context, p models.EmailTemplateParams) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	r.sent = append(r.sent, p)
	r.mu.Unlock()
	return r.err
}

func (r *fakeRelay) Sent() []models.EmailTemplateParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.EmailTemplateParams(nil), r.sent...)
}

func image(name string) models.AttachmentCandidate {
	return models.AttachmentCandidate{Name: name, MimeType: "image/jpeg", SizeBytes: 1024, Data: []byte("jpeg")}
}

// ctxBackend fails the way real SDK clients do once ctx is done.
type ctxBackend struct{}

func (ctxBackend) Name() string { return "ctx" }

func (ctxBackend) Upload(ctx context.Context, file models.AttachmentCandidate) (models.UploadedAttachment, error) {
	if err := ctx.Err(); err != nil {
		return models.UploadedAttachment{}, err
	}
	return models.UploadedAttachment{ID: "id-" + file.Name, URL: "https://files.example.com/" + file.Name}, nil
}

type panicBackend struct{ on string }

func (panicBackend) Name() string { return "panic" }

func (b panicBackend) Upload(_ context.Context, file models.AttachmentCandidate) (models.UploadedAttachment, error) {
	if file.Name == b.on {
		panic("nil client")
	}
	return models.UploadedAttachment{ID: "id-" + file.Name, URL: "https://files.example.com/" + file.Name}, nil
}
