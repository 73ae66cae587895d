package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"catalog_api/internal/app/upload"
	"catalog_api/internal/common"
)

const (
	multipartMemory = 8 << 20
	formOverhead    = 1 << 20
)

// requestBody is a parsed JSON, urlencoded or multipart body flattened to
// string fields, plus the uploaded file if there was one.
type requestBody struct {
	Fields map[string]string
	File   *multipart.FileHeader
	form   *multipart.Form
}

// Close removes temporary files created for multipart parts.
func (b *requestBody) Close() {
	if b != nil && b.form != nil {
		b.form.RemoveAll()
	}
}

// readRequestBody parses r's body. An empty or unparseable body is
// common.ErrMalformedRequest.
func readRequestBody(w http.ResponseWriter, r *http.Request, maxUpload int64) (*requestBody, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+formOverhead)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("content type %q: %w", ct, common.ErrMalformedRequest)
		}
		mediaType = mt
	}

	switch mediaType {
	case "multipart/form-data":
		return readMultipart(r)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		body := &requestBody{Fields: firstValues(r.PostForm)}
		if len(body.Fields) == 0 {
			return nil, fmt.Errorf("empty form: %w", common.ErrMalformedRequest)
		}
		return body, nil
	case "application/json":
		return readJSON(r)
	default:
		return nil, fmt.Errorf("unsupported content type %q: %w", mediaType, common.ErrMalformedRequest)
	}
}

func readMultipart(r *http.Request) (*requestBody, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, bodyError(err)
	}
	body := &requestBody{
		Fields: firstValues(r.MultipartForm.Value),
		File:   upload.FirstFile(r.MultipartForm),
		form:   r.MultipartForm,
	}
	if len(body.Fields) == 0 && body.File == nil {
		body.Close()
		return nil, fmt.Errorf("empty form: %w", common.ErrMalformedRequest)
	}
	return body, nil
}

func readJSON(r *http.Request) (*requestBody, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyError(err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty body: %w", common.ErrMalformedRequest)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v: %w", err, common.ErrMalformedRequest)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty object: %w", common.ErrMalformedRequest)
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = stringify(v)
	}
	return &requestBody{Fields: fields}, nil
}

// stringify turns JSON values into the string form a form field would have.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

func firstValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("request body exceeds %d bytes: %w", tooLarge.Limit, common.ErrBadRequest)
	}
	return fmt.Errorf("%v: %w", err, common.ErrMalformedRequest)
}
