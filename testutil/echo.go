package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// EchoResponse is the JSON body the echo server answers with.
type EchoResponse struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   string            `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// UploadResponse is the JSON body answered by /upload.
type UploadResponse struct {
	Fields map[string]string   `json:"fields"`
	Files  map[string]FileInfo `json:"files"`
}

// FileInfo describes one uploaded file part.
type FileInfo struct {
	FileName    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// NewEchoServer starts a test server closed at the end of the test. Routes:
//
//	ANY /echo/*path    reflects the request as EchoResponse
//	ANY /status/:code  answers with that status and {"status": code}
//	GET /cookies/set   sets every query parameter as a cookie
//	ANY /cookies       answers with the cookies it received
//	POST /upload       parses multipart/form-data into UploadResponse
func NewEchoServer(t testing.TB) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Any("/echo/*path", echo)
	r.Any("/status/:code", status)
	r.GET("/cookies/set", setCookies)
	r.Any("/cookies", cookies)
	r.POST("/upload", upload)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func echo(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		headers[k] = strings.Join(v, ", ")
	}
	c.JSON(http.StatusOK, EchoResponse{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Query:   c.Request.URL.RawQuery,
		Headers: headers,
		Body:    string(body),
	})
}

func status(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 100 || code > 599 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status code"})
		return
	}
	c.JSON(code, gin.H{"status": code})
}

func setCookies(c *gin.Context) {
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			c.SetCookie(name, values[0], 3600, "/", "", false, true)
		}
	}
	c.Status(http.StatusNoContent)
}

func cookies(c *gin.Context) {
	out := make(map[string]string)
	for _, ck := range c.Request.Cookies() {
		out[ck.Name] = ck.Value
	}
	c.JSON(http.StatusOK, out)
}

func upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := UploadResponse{
		Fields: make(map[string]string),
		Files:  make(map[string]FileInfo),
	}
	for k, v := range form.Value {
		if len(v) > 0 {
			resp.Fields[k] = v[0]
		}
	}
	for field, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		data, _ := io.ReadAll(f)
		_ = f.Close()
		resp.Files[field] = FileInfo{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     string(data),
		}
	}
	c.JSON(http.StatusOK, resp)
}
