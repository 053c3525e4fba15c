package analysis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"

// mockService creates a test server for the upload endpoint.
func mockService(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient(t *testing.T) {
	c := NewClient("http://svc.example/")
	if c.BaseURL() != "http://svc.example" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", c.BaseURL())
	}
	if c.httpClient.Timeout != 2*time.Minute {
		t.Errorf("default timeout = %v, want 2m", c.httpClient.Timeout)
	}
}

func TestNewClientOptions(t *testing.T) {
	transport := &http.Transport{}
	hc := &http.Client{Transport: transport}
	c := NewClient("http://svc", WithHTTPClient(hc), WithTimeout(5*time.Second), WithUserAgent("test/1"))
	if c.httpClient.Transport != transport {
		t.Error("WithHTTPClient not applied")
	}
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.httpClient.Timeout)
	}
	if c.userAgent != "test/1" {
		t.Errorf("userAgent = %q", c.userAgent)
	}
}

func TestNewClient_LeavesCallerClientUntouched(t *testing.T) {
	hc := &http.Client{Timeout: 7 * time.Second}
	c := NewClient("http://svc", WithHTTPClient(hc), WithTimeout(3*time.Second))
	if hc.Timeout != 7*time.Second {
		t.Errorf("caller's client timeout = %v, want 7s unchanged", hc.Timeout)
	}
	if c.httpClient == hc {
		t.Error("client should hold its own copy")
	}
	if c.httpClient.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", c.httpClient.Timeout)
	}

	before := http.DefaultClient.Timeout
	NewClient("http://svc", WithTimeout(time.Second))
	if http.DefaultClient.Timeout != before {
		t.Errorf("http.DefaultClient.Timeout changed to %v", http.DefaultClient.Timeout)
	}
}

// ---------------------------------------------------------------------------
// Upload: request shape
// ---------------------------------------------------------------------------

func TestUpload_SendsSingleFileMultipart(t *testing.T) {
	srv := mockService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/pdf/upload" {
			t.Errorf("path = %s, want /api/pdf/upload", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if n := len(r.MultipartForm.File); n != 1 {
			t.Errorf("file fields = %d, want 1", n)
		}
		if n := len(r.MultipartForm.Value); n != 0 {
			t.Errorf("value fields = %d, want 0", n)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "paper.pdf" {
			t.Errorf("filename = %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("part content type = %q", ct)
		}
		data, _ := io.ReadAll(file)
		if string(data) != samplePDF {
			t.Errorf("file content = %q", data)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"items":[{"rule":"Margins","status":"pass","message":"ok"}]}`)
	})

	report, err := NewClient(srv.URL).Upload(context.Background(), "paper.pdf", strings.NewReader(samplePDF))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if len(report.Items) != 1 || report.Items[0].Status != compliance.StatusPass {
		t.Errorf("report = %+v", report)
	}
}

func TestUpload_BaseURLWithPathPrefix(t *testing.T) {
	srv := mockService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checker/api/pdf/upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		io.WriteString(w, `{"items":[]}`)
	})

	if _, err := NewClient(srv.URL+"/checker/").Upload(context.Background(), "a.pdf", strings.NewReader(samplePDF)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Upload: failures
// ---------------------------------------------------------------------------

func TestUpload_NonOKStatusIsTransportError(t *testing.T) {
	srv := mockService(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		http.Error(w, "internal failure", http.StatusInternalServerError)
	})

	_, err := NewClient(srv.URL).Upload(context.Background(), "a.pdf", strings.NewReader(samplePDF))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
	if te.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", te.StatusCode)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error message %q should include the status code", err.Error())
	}
	if !strings.Contains(te.Body, "internal failure") {
		t.Errorf("Body = %q", te.Body)
	}
}

func TestUpload_CreatedIsNotSuccess(t *testing.T) {
	srv := mockService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"items":[]}`)
	})

	_, err := NewClient(srv.URL).Upload(context.Background(), "a.pdf", strings.NewReader(samplePDF))
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusCreated {
		t.Fatalf("error = %v, want TransportError with 201", err)
	}
}

func TestUpload_NonJSONBodyIsFormatError(t *testing.T) {
	srv := mockService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html>maintenance</html>")
	})

	_, err := NewClient(srv.URL).Upload(context.Background(), "a.pdf", strings.NewReader(samplePDF))
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v (%T), want *FormatError", err, err)
	}
	if fe.ContentType != "text/html" {
		t.Errorf("ContentType = %q", fe.ContentType)
	}
}

func TestUpload_SchemaMismatchIsFormatError(t *testing.T) {
	srv := mockService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"result":"ok"}`)
	})

	_, err := NewClient(srv.URL).Upload(context.Background(), "a.pdf", strings.NewReader(samplePDF))
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v (%T), want *FormatError", err, err)
	}
	if !errors.Is(err, compliance.ErrMalformedReport) {
		t.Errorf("error %v should wrap ErrMalformedReport", err)
	}
}

func TestUpload_ConnectionRefusedIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, WithTimeout(2*time.Second)).Upload(context.Background(), "a.pdf", strings.NewReader(samplePDF))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
	if te.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", te.StatusCode)
	}
}

func TestUpload_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := mockService(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(srv.URL).Upload(ctx, "a.pdf", strings.NewReader(samplePDF))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestIsJSON(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/plain", false},
		{"", false},
		{"text/html; charset=utf-8", false},
	}
	for _, tt := range tests {
		if got := isJSON(tt.ct); got != tt.want {
			t.Errorf("isJSON(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestSnippet(t *testing.T) {
	if got := snippet([]byte("  a\n\tb  ")); got != "a b" {
		t.Errorf("snippet = %q, want %q", got, "a b")
	}
	long := strings.Repeat("x", 500)
	if got := snippet([]byte(long)); len(got) != 203 {
		t.Errorf("len(snippet) = %d, want 203", len(got))
	}
}
