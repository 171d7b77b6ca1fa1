package services

import (
	"context"
	"sync"

	"github.com/klinova/klinova-api/pkg/clients/resend"
	"github.com/klinova/klinova-api/pkg/config"
)

// fakeResend records every email and answers with err (nil means success).
type fakeResend struct {
	mu   sync.Mutex
	sent []resend.Email
	err  error
}

func (f *fakeResend) SendEmail(_ context.Context, email resend.Email) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email)
	if f.err != nil {
		return "", f.err
	}
	return "email_fake", nil
}

func (f *fakeResend) calls() []resend.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]resend.Email(nil), f.sent...)
}

func testConfig(env map[string]string) *config.Config {
	return config.FromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
}
