package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"testing"
)

func TestEngine_RecordsSessionAndBody(t *testing.T) {
	e := NewEngine()

	req, _ := http.NewRequest(http.MethodPost, "https://api.example.com/items", strings.NewReader(`{"a":1}`))
	req.Header.Set("X-Test", "1")
	resp, err := e.Ephemeral().Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected fallback 200, got %d", resp.StatusCode)
	}

	rec, ok := e.LastRequest()
	if !ok {
		t.Fatal("expected a recorded request")
	}
	if rec.Session != SessionEphemeral || rec.Method != http.MethodPost {
		t.Errorf("unexpected record %+v", rec)
	}
	if string(rec.Body) != `{"a":1}` || rec.Header.Get("X-Test") != "1" {
		t.Errorf("unexpected body/header %q %v", rec.Body, rec.Header)
	}
}

func TestEngine_QueueThenFallback(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine().Enqueue(Respond(http.StatusCreated, "first"), Fail(boom))

	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com", nil)

	resp, err := e.Shared().Do(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %v %v", resp, err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "first" {
		t.Errorf("expected body 'first', got %q", body)
	}

	if _, err := e.Shared().Do(req); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}

	resp, err = e.Shared().Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("expected fallback 200, got %v %v", resp, err)
	}
	if len(e.Requests()) != 3 {
		t.Errorf("expected 3 recorded requests, got %d", len(e.Requests()))
	}

	e.Reset()
	if len(e.Requests()) != 0 {
		t.Error("expected Reset to clear requests")
	}
}

func TestEngine_NilResults(t *testing.T) {
	e := NewEngine().Enqueue(RespondNil(), RespondNilBody(http.StatusOK))
	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com", nil)

	if resp, err := e.Shared().Do(req); resp != nil || err != nil {
		t.Errorf("expected nil, nil; got %v, %v", resp, err)
	}
	resp, err := e.Shared().Do(req)
	if err != nil || resp == nil || resp.Body != nil {
		t.Errorf("expected response without body, got %v, %v", resp, err)
	}
}

func TestEchoServer_Echo(t *testing.T) {
	srv := NewEchoServer(t)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/echo/users/1?x=1", bytes.NewBufferString("payload"))
	req.Header.Set("X-Trace", "abc")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var got EchoResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Method != http.MethodPut || got.Path != "/echo/users/1" || got.Query != "x=1" {
		t.Errorf("unexpected echo %+v", got)
	}
	if got.Body != "payload" || got.Headers["X-Trace"] != "abc" {
		t.Errorf("unexpected echo body/headers %+v", got)
	}
}

func TestEchoServer_Status(t *testing.T) {
	srv := NewEchoServer(t)

	resp, err := http.Get(srv.URL + "/status/418")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("expected 418, got %d", resp.StatusCode)
	}
}

func TestEchoServer_Cookies(t *testing.T) {
	srv := NewEchoServer(t)
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(srv.URL + "/cookies/set?session=abc")
	if err != nil {
		t.Fatalf("set cookies: %v", err)
	}
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/cookies")
	if err != nil {
		t.Fatalf("get cookies: %v", err)
	}
	defer resp.Body.Close()
	var got map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&got)
	if got["session"] != "abc" {
		t.Errorf("expected session cookie, got %v", got)
	}
}
