package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecognizeRequiresImage(t *testing.T) {
	handler := NewRecognizeHandler(testSystem(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recognize", nil)
	rec := httptest.NewRecorder()
	handler.Recognize(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestRecognizeUnknownFace(t *testing.T) {
	handler := NewRecognizeHandler(testSystem(t))

	req := multipartImageRequest(t, "/api/v1/recognize", testFace(), nil)
	rec := httptest.NewRecorder()
	handler.Recognize(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp RecognizeResponse
	parseJSONResponse(t, rec, &resp)
	if len(resp.Faces) != 1 {
		t.Fatalf("got %d faces; want 1", len(resp.Faces))
	}
	if resp.Faces[0].Match.Known {
		t.Error("empty gallery cannot recognize anyone")
	}
	if len(resp.Marked) != 0 {
		t.Errorf("nothing should be marked, got %d", len(resp.Marked))
	}
}

func TestRecognizeKnownFaceWithMark(t *testing.T) {
	sys := testSystem(t)
	face := testFace()
	if err := sys.Enroll("Alice", face); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	handler := NewRecognizeHandler(sys)

	req := multipartImageRequest(t, "/api/v1/recognize", face, map[string]string{"mark": "true"})
	rec := httptest.NewRecorder()
	handler.Recognize(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp RecognizeResponse
	parseJSONResponse(t, rec, &resp)
	if len(resp.Faces) != 1 || !resp.Faces[0].Match.Known {
		t.Fatalf("expected one recognized face, got %+v", resp.Faces)
	}
	if resp.Faces[0].Match.Name != "Alice" {
		t.Errorf("name = %q; want Alice", resp.Faces[0].Match.Name)
	}
	if len(resp.Marked) != 1 || !resp.Marked[0].Accepted {
		t.Fatalf("expected one accepted mark, got %+v", resp.Marked)
	}

	// Second recognition the same day must not double-mark.
	req = multipartImageRequest(t, "/api/v1/recognize", face, map[string]string{"mark": "true"})
	rec = httptest.NewRecorder()
	handler.Recognize(rec, req)

	parseJSONResponse(t, rec, &resp)
	if len(resp.Marked) != 1 || resp.Marked[0].Accepted {
		t.Errorf("repeat mark should be rejected, got %+v", resp.Marked)
	}
}

func TestRecognizeInvalidThreshold(t *testing.T) {
	handler := NewRecognizeHandler(testSystem(t))

	for _, raw := range []string{"abc", "-5", "0"} {
		req := multipartImageRequest(t, "/api/v1/recognize", testFace(), map[string]string{"threshold": raw})
		rec := httptest.NewRecorder()
		handler.Recognize(rec, req)

		assertStatusCode(t, rec, http.StatusBadRequest)
		assertJSONError(t, rec, "threshold must be a positive number")
	}
}

func TestRecognizeThresholdOverride(t *testing.T) {
	sys := testSystem(t)
	face := testFace()
	if err := sys.Enroll("Alice", face); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	handler := NewRecognizeHandler(sys)

	// A vanishingly small threshold still accepts a zero-distance match.
	req := multipartImageRequest(t, "/api/v1/recognize", face, map[string]string{"threshold": "0.001"})
	rec := httptest.NewRecorder()
	handler.Recognize(rec, req)

	var resp RecognizeResponse
	parseJSONResponse(t, rec, &resp)
	if len(resp.Faces) != 1 || !resp.Faces[0].Match.Known {
		t.Errorf("zero-distance match should pass any positive threshold, got %+v", resp.Faces)
	}
}
