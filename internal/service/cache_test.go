package service

import (
	"testing"
	"time"

	"github.com/bigkaa/document-intake/internal/domain/model"
)

// TestCacheService_GetSet проверяет базовые операции Get/Set.
func TestCacheService_GetSet(t *testing.T) {
	cache := NewCacheService(100, 5*time.Minute)

	tok := model.SignatureToken{
		Value:     "token-1",
		SubjectID: "12345678901",
		ExpiresAt: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
	}

	if _, ok := cache.Get("token-1"); ok {
		t.Fatal("ожидался cache miss для нового ключа")
	}

	cache.Set(tok)
	got, ok := cache.Get("token-1")
	if !ok {
		t.Fatal("ожидался cache hit после Set")
	}
	if got != tok {
		t.Errorf("Get = %+v, ожидалось %+v", got, tok)
	}
}

// TestCacheService_TTLExpiration проверяет автоматическое истечение TTL.
func TestCacheService_TTLExpiration(t *testing.T) {
	cache := NewCacheService(100, 50*time.Millisecond)
	cache.Set(model.SignatureToken{Value: "ttl-test"})

	if _, ok := cache.Get("ttl-test"); !ok {
		t.Fatal("ожидался cache hit сразу после Set")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := cache.Get("ttl-test"); ok {
		t.Fatal("ожидался cache miss после истечения TTL")
	}
}

// TestCacheService_MaxSize проверяет вытеснение при превышении размера.
func TestCacheService_MaxSize(t *testing.T) {
	cache := NewCacheService(2, 5*time.Minute)

	cache.Set(model.SignatureToken{Value: "a"})
	cache.Set(model.SignatureToken{Value: "b"})
	cache.Set(model.SignatureToken{Value: "c"})

	if cache.Len() != 2 {
		t.Errorf("Len = %d, ожидалось 2", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("самая старая запись должна быть вытеснена")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("последняя запись должна остаться в кэше")
	}
}
