package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dishPhoto renders a small solid-colour photo in the given format.
func dishPhoto(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	default:
		t.Fatalf("unknown format %q", format)
	}
	return buf.Bytes()
}

func TestAllowedImageMIME_DishPhotos(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantOK   bool
	}{
		{name: "encoded JPEG photo", data: dishPhoto(t, "jpeg"), wantMIME: "image/jpeg", wantOK: true},
		{name: "encoded PNG photo", data: dishPhoto(t, "png"), wantMIME: "image/png", wantOK: true},
		{name: "animated GIF", data: []byte("GIF89a\x04\x00\x04\x00"), wantMIME: "image/gif", wantOK: true},
		{name: "WebP from a phone camera", data: append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), make([]byte, 16)...), wantMIME: "image/webp", wantOK: true},
		{name: "WAV in a RIFF container", data: append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 16)...)},
		{name: "menu exported as PDF", data: []byte("%PDF-1.7\n1 0 obj")},
		{name: "SVG logo", data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)},
		{name: "HTML page named cake.jpg", data: []byte("<!DOCTYPE html><html><body>cake</body></html>")},
		{name: "plain text price list", data: []byte("Soup 45.00\nSteak 180.00\n")},
		{name: "BMP", data: []byte("BM\x36\x00\x00\x00\x00\x00\x00\x00")},
		{name: "empty upload", data: []byte{}},
		{name: "RIFF header cut short", data: []byte("RIFF\x24\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMIME, gotOK := allowedImageMIME(tt.data)
			assert.Equal(t, tt.wantOK, gotOK)
			assert.Equal(t, tt.wantMIME, gotMIME)
		})
	}
}

func TestHandleUploadPhoto_RejectsBadRequests(t *testing.T) {
	s := &Server{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	multipartBody := func(field string, data []byte) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile(field, "dish.jpg")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	tests := []struct {
		name        string
		body        func() (*bytes.Buffer, string)
		wantMessage string
	}{
		{
			name:        "not multipart",
			body:        func() (*bytes.Buffer, string) { return bytes.NewBufferString(`{"image":"x"}`), "application/json" },
			wantMessage: "failed to parse form",
		},
		{
			name:        "photo under the wrong field",
			body:        func() (*bytes.Buffer, string) { return multipartBody("photo", dishPhoto(t, "jpeg")) },
			wantMessage: "image file required",
		},
		{
			name:        "text file posing as a photo",
			body:        func() (*bytes.Buffer, string) { return multipartBody("image", []byte("Soup 45.00")) },
			wantMessage: "unsupported image format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := tt.body()
			req := httptest.NewRequest(http.MethodPost, "/owner/photo", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			s.handleUploadPhoto(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantMessage, resp.Error)
		})
	}
}
