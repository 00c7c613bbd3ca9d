package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"luxstay/models"

	"github.com/gabriel-vasile/mimetype"
)

const (
	maxAttachments    = 5
	maxAttachmentSize = 5 << 20
)

// allowedAttachmentTypes lists the identity document formats the payment
// endpoint accepts.
var allowedAttachmentTypes = []string{"application/pdf", "image/jpeg", "image/png", "image/webp"}

// readAttachments loads the uploaded identity documents of a multipart
// form into memory, rejecting unknown formats.
func readAttachments(form *multipart.Form, field string) ([]models.Attachment, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	if len(headers) > maxAttachments {
		return nil, fmt.Errorf("at most %d documents may be attached", maxAttachments)
	}
	out := make([]models.Attachment, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxAttachmentSize {
			return nil, fmt.Errorf("%s is larger than %d bytes", fh.Filename, maxAttachmentSize)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(io.LimitReader(f, maxAttachmentSize+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		if mt := mimetype.Detect(content); !mimetype.EqualsAny(mt.String(), allowedAttachmentTypes...) {
			return nil, fmt.Errorf("%s has unsupported type %s", fh.Filename, mt.String())
		}
		out = append(out, models.Attachment{Filename: fh.Filename, Content: content})
	}
	return out, nil
}
