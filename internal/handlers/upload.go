package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"bloghub/internal/apperr"
	"bloghub/internal/media"
)

func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "multipart/form-data"
}

// parseMultipart parses a multipart form and returns the contents of the
// file under fileField, or nil when none was sent. The file is read up to
// one byte past the upload limit so the media service can reject it.
func parseMultipart(w http.ResponseWriter, r *http.Request, fileField string) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*media.MaxUploadBytes+maxJSONBody)
	if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, apperr.Validation(media.RejectionMessage(media.ErrTooLarge))
		}
		return nil, apperr.Validation("Malformed multipart body")
	}

	file, _, err := r.FormFile(fileField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("Malformed multipart body")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, media.MaxUploadBytes+1))
	if err != nil {
		return nil, apperr.Validation("Malformed multipart body")
	}
	return data, nil
}

// formValue returns the first value of key in a parsed multipart form, or
// nil when the field was not sent.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vs, ok := r.MultipartForm.Value[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
