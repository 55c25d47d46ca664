package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/lbp"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// fixedLocator returns the same boxes for every image.
type fixedLocator struct {
	boxes []image.Rectangle
}

func (f fixedLocator) Locate(img image.Image) []image.Rectangle {
	return f.boxes
}

// testConfig creates a minimal config for testing
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	return &config.Config{
		Encoder: lbp.DefaultParams(),
		Matcher: config.MatcherConfig{Threshold: 100},
		Storage: config.StorageConfig{
			FacesDir:      filepath.Join(base, "faces"),
			AttendanceDir: filepath.Join(base, "attendance"),
		},
	}
}

// testFace is a synthetic 200x200 gradient used as a stand-in face crop.
func testFace() image.Image {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := range 200 {
		for x := range 200 {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) * 255 / 400)})
		}
	}
	return img
}

// testSystem builds a recognition system whose locator always finds one
// full-frame face.
func testSystem(t *testing.T) *recognizer.System {
	t.Helper()
	return recognizer.NewWithLocator(testConfig(t), fixedLocator{
		boxes: []image.Rectangle{image.Rect(0, 0, 200, 200)},
	})
}

// multipartImageRequest builds a multipart POST with a PNG-encoded image
// and optional extra form fields.
func multipartImageRequest(t *testing.T, path string, img image.Image, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if img != nil {
		part, err := writer.CreateFormFile("image", "face.png")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if err := png.Encode(part, img); err != nil {
			t.Fatalf("encoding test image: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("writing form field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
