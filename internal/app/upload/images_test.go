package upload

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"catalog_api/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// parseForm builds a multipart request with one file per entry and parses it.
func parseForm(t *testing.T, files map[string][2]string) *multipart.Form {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, f := range files {
		part, err := mw.CreateFormFile(field, f[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm
}

func newStore(t *testing.T) *ImageStore {
	t.Helper()
	s, err := NewImageStore(filepath.Join(t.TempDir(), "images"), 1<<20)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return s
}

func TestFilename(t *testing.T) {
	s := newStore(t)
	assert.Equal(t, "1700000000123_my-photo.png", s.Filename("My Photo.PNG"))
	assert.Equal(t, "1700000000123_evil.jpg", s.Filename(`..\..\evil.jpg`))
	assert.Equal(t, "1700000000123_image.gif", s.Filename(".gif"))
}

func TestSaveStoresValidImage(t *testing.T) {
	s := newStore(t)
	form := parseForm(t, map[string][2]string{"image": {"mug.png", string(pngBytes(t, 4, 4))}})

	name, err := s.Save(FirstFile(form))
	require.NoError(t, err)
	assert.Equal(t, "1700000000123_mug.png", name)
	assert.FileExists(t, filepath.Join(s.Dir(), name))

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, name, files[0].Name)

	require.NoError(t, s.Remove(name))
	require.NoError(t, s.Remove(name))
	assert.NoFileExists(t, filepath.Join(s.Dir(), name))
}

func TestSaveRejectsBadUploads(t *testing.T) {
	s := newStore(t)
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{"wrong extension", "mug.exe", string(pngBytes(t, 2, 2))},
		{"text disguised as png", "mug.png", "definitely not an image"},
		{"empty", "mug.png", ""},
		{"too large", "mug.png", string(bytes.Repeat([]byte{0x89}, 2<<20))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := parseForm(t, map[string][2]string{"image": {tt.filename, tt.content}})
			_, err := s.Save(FirstFile(form))
			assert.ErrorIs(t, err, common.ErrBadRequest)
		})
	}

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFirstFilePrefersImageField(t *testing.T) {
	form := parseForm(t, map[string][2]string{
		"a-photo": {"a.png", "x"},
		"image":   {"b.png", "y"},
	})
	assert.Equal(t, "b.png", FirstFile(form).Filename)

	form = parseForm(t, map[string][2]string{
		"zeta":  {"z.png", "x"},
		"alpha": {"a.png", "y"},
	})
	assert.Equal(t, "a.png", FirstFile(form).Filename)

	assert.Nil(t, FirstFile(nil))
	assert.Nil(t, FirstFile(&multipart.Form{}))
}

func TestRemoveRefusesPaths(t *testing.T) {
	s := newStore(t)
	assert.Error(t, s.Remove("../db.json"))
	assert.NoError(t, s.Remove(""))
}
