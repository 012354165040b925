package email

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestDiagnose_Classification(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode ErrorCode
		wantTemp bool
	}{
		{"auth 535", errors.New("535 5.7.8 Username and Password not accepted"), CodeAuth, false},
		{"auth generic", errors.New("smtp: authentication failed"), CodeAuth, false},
		{"rate 421", errors.New("421 4.7.0 Try again later"), CodeRateLimited, true},
		{"rate text", errors.New("rate limit exceeded for sender"), CodeRateLimited, true},
		{"bad rcpt", errors.New("550 5.1.1 user unknown"), CodeInvalidRecipient, false},
		{"mailbox", errors.New("mailbox not found"), CodeInvalidRecipient, false},
		{"refused", errors.New("dial tcp 10.0.0.1:587: connect: connection refused"), CodeTransport, true},
		{"dns", errors.New("lookup smtp.nowhere: no such host"), CodeTransport, true},
		{"deadline", context.DeadlineExceeded, CodeTransport, true},
		{"policy", errors.New("554 5.7.1 message rejected due to DMARC policy"), CodeTransport, false},
		{"opaque", errors.New("something odd happened"), CodeTransport, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			me := Diagnose(tc.err)
			if me == nil {
				t.Fatal("expected non-nil MailError")
			}
			if me.Code != tc.wantCode {
				t.Fatalf("code = %s, want %s", me.Code, tc.wantCode)
			}
			if me.Temporary != tc.wantTemp {
				t.Fatalf("temporary = %v, want %v", me.Temporary, tc.wantTemp)
			}
		})
	}
}

func TestDiagnose_NilAndPassthrough(t *testing.T) {
	if Diagnose(nil) != nil {
		t.Fatal("nil error should diagnose as nil")
	}
	orig := &MailError{Code: CodeAuth, Err: errors.New("boom")}
	got := Diagnose(fmt.Errorf("send: %w", orig))
	if got != orig {
		t.Fatalf("wrapped *MailError should pass through, got %+v", got)
	}
}

func TestCodeOf_Unclassified(t *testing.T) {
	if c := CodeOf(errors.New("whatever")); c != CodeTransport {
		t.Fatalf("CodeOf = %s, want %s", c, CodeTransport)
	}
	if c := CodeOf(&MailError{Code: CodeRateLimited}); c != CodeRateLimited {
		t.Fatalf("CodeOf = %s, want %s", c, CodeRateLimited)
	}
}
