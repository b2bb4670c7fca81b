package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendGrid_PostsMail(t *testing.T) {
	var (
		auth string
		mail sgMail
		path string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&mail)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	sg := NewSendGrid(SendGridConfig{APIKey: "SG.key", From: "alerts@example.com", To: "ops@example.com", BaseURL: ts.URL})
	if sg == nil {
		t.Fatal("expected sendgrid client")
	}
	if err := sg.Send(context.Background(), "Subject", "Body"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer SG.key" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if path != "/v3/mail/send" {
		t.Fatalf("unexpected path %q", path)
	}
	if mail.Subject != "Subject" || mail.From.Email != "alerts@example.com" {
		t.Fatalf("unexpected mail: %+v", mail)
	}
	if len(mail.Personalizations) != 1 || mail.Personalizations[0].To[0].Email != "ops@example.com" {
		t.Fatalf("unexpected recipients: %+v", mail.Personalizations)
	}
	if len(mail.Content) != 1 || mail.Content[0].Type != "text/plain" || mail.Content[0].Value != "Body" {
		t.Fatalf("unexpected content: %+v", mail.Content)
	}
}

func TestSendGrid_RejectedIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	sg := NewSendGrid(SendGridConfig{APIKey: "k", From: "a@b.c", To: "d@e.f", BaseURL: ts.URL})
	if err := sg.Send(context.Background(), "S", "B"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestSendGrid_IncompleteConfigIsNil(t *testing.T) {
	if NewSendGrid(SendGridConfig{APIKey: "k", From: "a@b.c"}) != nil {
		t.Fatal("expected nil without recipient")
	}
}
