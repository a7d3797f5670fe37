package services

import (
	"context"
	"fmt"
	"log"

	"github.com/haidershah700/china-pakistan-connect/models"
	"github.com/haidershah700/china-pakistan-connect/utils"
	"golang.org/x/sync/errgroup"
)

type AttachmentUploader struct {
	backend     utils.UploadBackend
	parallelism int
}

func NewAttachmentUploader(backend utils.UploadBackend, parallelism int) *AttachmentUploader {
	if parallelism < 1 {
		parallelism = 1
	}
	return &AttachmentUploader{backend: backend, parallelism: parallelism}
}

func (u *AttachmentUploader) Backend() utils.UploadBackend { return u.backend }

type UploadReport struct {
	Uploaded []models.UploadedAttachment
	Failed   int
}

// UploadAll uploads every file independently. Failures are logged and left
// out; successes keep the input order and carry their source filename.
func (u *AttachmentUploader) UploadAll(ctx context.Context, accepted []models.AttachmentCandidate) UploadReport {
	if len(accepted) == 0 {
		return UploadReport{Uploaded: []models.UploadedAttachment{}}
	}

	results := make([]*models.UploadedAttachment, len(accepted))
	var g errgroup.Group
	g.SetLimit(u.parallelism)

	for i, file := range accepted {
		g.Go(func() error {
			att, err := u.upload(ctx, file)
			if err != nil {
				log.Printf("Upload of %q via %s failed: %v", file.Name, u.backend.Name(), err)
				return nil
			}
			if att.SourceFilename == "" {
				att.SourceFilename = file.Name
			}
			if att.URL == "" {
				log.Printf("Upload of %q via %s returned no url", file.Name, u.backend.Name())
				return nil
			}
			results[i] = &att
			return nil
		})
	}
	_ = g.Wait()

	report := UploadReport{Uploaded: make([]models.UploadedAttachment, 0, len(accepted))}
	for _, r := range results {
		if r == nil {
			report.Failed++
			continue
		}
		report.Uploaded = append(report.Uploaded, *r)
	}
	return report
}

func (u *AttachmentUploader) upload(ctx context.Context, file models.AttachmentCandidate) (att models.UploadedAttachment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return u.backend.Upload(ctx, file)
}
