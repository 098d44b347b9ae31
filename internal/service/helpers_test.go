package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bigkaa/document-intake/internal/domain/model"
	"github.com/bigkaa/document-intake/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock — управляемые часы для тестов.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubTokenRepo — репозиторий с настраиваемыми ошибками и счётчиком Get.
type stubTokenRepo struct {
	repository.TokenRepository

	mu       sync.Mutex
	putErrs  []error
	getErr   error
	getCalls int
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{TokenRepository: repository.NewMemoryTokenRepository()}
}

func (r *stubTokenRepo) Put(ctx context.Context, t model.SignatureToken) error {
	r.mu.Lock()
	if len(r.putErrs) > 0 {
		err := r.putErrs[0]
		r.putErrs = r.putErrs[1:]
		r.mu.Unlock()
		if err != nil {
			return err
		}
	} else {
		r.mu.Unlock()
	}
	return r.TokenRepository.Put(ctx, t)
}

func (r *stubTokenRepo) Get(ctx context.Context, value string) (model.SignatureToken, error) {
	r.mu.Lock()
	r.getCalls++
	err := r.getErr
	r.mu.Unlock()
	if err != nil {
		return model.SignatureToken{}, err
	}
	return r.TokenRepository.Get(ctx, value)
}

func (r *stubTokenRepo) gets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getCalls
}
