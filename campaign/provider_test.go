package campaign

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/crm_backend/utils"
)

func TestO365Send_PostsGraphMessage(t *testing.T) {
	var captured struct {
		auth string
		body map[string]any
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		payload, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(payload, &captured.body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	p := &O365Provider{sendURL: server.URL, client: server.Client()}
	sender := &PreparedSender{AccessToken: "token-123", SenderEmail: "owner@example.com"}
	err := p.Send(context.Background(), sender, "lead@example.com", "Hello", "<p>Hi</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.auth != "Bearer token-123" {
		t.Fatalf("expected bearer token header, got %q", captured.auth)
	}
	message, ok := captured.body["message"].(map[string]any)
	if !ok {
		t.Fatalf("expected a message object, got %v", captured.body)
	}
	if message["subject"] != "Hello" {
		t.Fatalf("expected subject Hello, got %v", message["subject"])
	}
	body, _ := message["body"].(map[string]any)
	if body["contentType"] != "HTML" || body["content"] != "<p>Hi</p>" {
		t.Fatalf("expected an HTML body, got %v", body)
	}
	if captured.body["saveToSentItems"] != true {
		t.Fatal("expected saveToSentItems true")
	}
}

func TestO365Send_NonAcceptedIsRemoteApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer server.Close()

	p := &O365Provider{sendURL: server.URL, client: server.Client()}
	err := p.Send(context.Background(), &PreparedSender{AccessToken: "stale"}, "lead@example.com", "Hello", "body")

	var remoteErr *utils.RemoteApiError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteApiError, got %v", err)
	}
	if remoteErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", remoteErr.StatusCode)
	}
	if !strings.Contains(remoteErr.Message, "token expired") {
		t.Fatalf("expected the remote message to surface, got %q", remoteErr.Message)
	}
}

func TestGmailSend_PostsBase64RawMime(t *testing.T) {
	var captured struct {
		auth string
		raw  string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		var payload struct {
			Raw string `json:"raw"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		captured.raw = payload.Raw
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := &GmailProvider{sendURL: server.URL, client: server.Client()}
	sender := &PreparedSender{AccessToken: "token-456", SenderEmail: "owner@example.com"}
	err := p.Send(context.Background(), sender, "lead@example.com", "Hello", "<p>Hi</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.auth != "Bearer token-456" {
		t.Fatalf("expected bearer token header, got %q", captured.auth)
	}
	decoded, decodeErr := base64.URLEncoding.DecodeString(captured.raw)
	if decodeErr != nil {
		t.Fatalf("raw payload is not base64url: %v", decodeErr)
	}
	mime := string(decoded)
	for _, header := range []string{
		"From: owner@example.com\r\n",
		"To: lead@example.com\r\n",
		"Subject: Hello\r\n",
		"Content-Type: text/html; charset=\"UTF-8\"\r\n",
	} {
		if !strings.Contains(mime, header) {
			t.Fatalf("mime message missing %q:\n%s", header, mime)
		}
	}
	if !strings.HasSuffix(mime, "\r\n\r\n<p>Hi</p>") {
		t.Fatalf("expected the body after a blank line, got:\n%s", mime)
	}
}

func TestGmailSend_NonOkIsRemoteApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	p := &GmailProvider{sendURL: server.URL, client: server.Client()}
	err := p.Send(context.Background(), &PreparedSender{AccessToken: "t"}, "lead@example.com", "Hello", "body")

	var remoteErr *utils.RemoteApiError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteApiError, got %v", err)
	}
	if remoteErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", remoteErr.StatusCode)
	}
}

func TestBuildMimeMessage_CrlfHeaders(t *testing.T) {
	mime := buildMimeMessage("a@example.com", "b@example.com", "Subject line", "<b>hi</b>")
	headerBlock := strings.SplitN(mime, "\r\n\r\n", 2)
	if len(headerBlock) != 2 {
		t.Fatalf("expected a blank line between headers and body:\n%s", mime)
	}
	if headerBlock[1] != "<b>hi</b>" {
		t.Fatalf("expected the body verbatim, got %q", headerBlock[1])
	}
	if !strings.Contains(headerBlock[0], "MIME-Version: 1.0") {
		t.Fatalf("expected a MIME-Version header:\n%s", headerBlock[0])
	}
}
