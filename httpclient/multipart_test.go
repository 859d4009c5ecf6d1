package httpclient

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func readParts(t *testing.T, data []byte, contentType string) map[string]*bytes.Buffer {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("ParseMediaType error: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("media type = %q, want multipart/form-data", mediaType)
	}

	parts := map[string]*bytes.Buffer{}
	mr := multipart.NewReader(bytes.NewReader(data), params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart error: %v", err)
		}
		buf := &bytes.Buffer{}
		_, _ = io.Copy(buf, part)
		parts[part.FormName()] = buf
	}
	return parts
}

func TestMultipartBody_Encode_FieldsOnly(t *testing.T) {
	mp := &MultipartBody{
		Fields: map[string]string{"name": "test", "value": "hello"},
	}

	data, contentType, err := mp.encode()
	if err != nil {
		t.Fatalf("encode() error: %v", err)
	}

	parts := readParts(t, data, contentType)
	if parts["name"].String() != "test" || parts["value"].String() != "hello" {
		t.Errorf("unexpected parts %v", parts)
	}
}

func TestMultipartBody_Encode_WithFile(t *testing.T) {
	mp := &MultipartBody{
		Fields: map[string]string{"language": "en"},
		Files: []FileField{
			{FieldName: "file", FileName: "report.csv", Data: []byte("a,b\n1,2\n")},
		},
	}

	data, contentType, err := mp.encode()
	if err != nil {
		t.Fatalf("encode() error: %v", err)
	}

	parts := readParts(t, data, contentType)
	if parts["language"].String() != "en" {
		t.Errorf("language = %q", parts["language"])
	}
	if parts["file"].String() != "a,b\n1,2\n" {
		t.Errorf("file = %q", parts["file"])
	}
	if !bytes.Contains(data, []byte(`filename="report.csv"`)) {
		t.Error("expected filename in part header")
	}
}

func TestMultipartBody_Encode_WithFileContentType(t *testing.T) {
	mp := &MultipartBody{
		Files: []FileField{
			{FieldName: "doc", FileName: `we"ird.txt`, ContentType: "text/plain", Data: []byte("x")},
		},
	}

	data, _, err := mp.encode()
	if err != nil {
		t.Fatalf("encode() error: %v", err)
	}
	if !bytes.Contains(data, []byte("Content-Type: text/plain")) {
		t.Error("expected Content-Type: text/plain in multipart body")
	}
	if !bytes.Contains(data, []byte(`filename="we\"ird.txt"`)) {
		t.Errorf("expected escaped filename, got %s", data)
	}
}

func TestMultipartBody_Encode_WithReader(t *testing.T) {
	content := "streamed content"
	mp := &MultipartBody{
		Files: []FileField{
			{FieldName: "file", FileName: "data.txt", Reader: bytes.NewReader([]byte(content))},
		},
	}

	data, contentType, err := mp.encode()
	if err != nil {
		t.Fatalf("encode() error: %v", err)
	}
	if got := readParts(t, data, contentType)["file"].String(); got != content {
		t.Errorf("file content = %q, want %q", got, content)
	}
}

func TestClient_UploadMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/files" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm error: %v", err)
			return
		}
		if got := r.FormValue("kind"); got != "report" {
			t.Errorf("kind field = %q, want report", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile error: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "q3.csv" {
			t.Errorf("filename = %q, want q3.csv", header.Filename)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"f1"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, DisableLogging: true})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	var got *Response
	call := c.UploadMultipart(context.Background(), "files", &MultipartBody{
		Fields: map[string]string{"kind": "report"},
		Files:  []FileField{{FieldName: "file", FileName: "q3.csv", Data: []byte("x,y")}},
	}, nil, func(r *Response) { got = r }, func(err error) { t.Errorf("unexpected failure: %v", err) })
	call.Wait()

	if got == nil || got.StatusCode != http.StatusCreated || got.Text() != `{"id":"f1"}` {
		t.Fatalf("unexpected response %+v", got)
	}
}
