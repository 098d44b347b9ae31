package apispec

import (
	"context"
	"net/http"
	"sort"
	"testing"
)

// TestLoad проверяет, что встроенный документ разбирается и валиден.
func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.OpenAPI != "3.0.3" {
		t.Errorf("версия OpenAPI: %s", doc.OpenAPI)
	}
}

// TestLoad_Operations проверяет набор путей и операций документа.
func TestLoad_Operations(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"/upload":                http.MethodPost,
		"/upload-signature":      http.MethodPost,
		"/check-signature/{nss}": http.MethodGet,
		"/files/{nss}":           http.MethodGet,
		"/tokens":                http.MethodPost,
		"/signed-document":       http.MethodGet,
		"/health/live":           http.MethodGet,
		"/health/ready":          http.MethodGet,
		"/metrics":               http.MethodGet,
		"/openapi.yaml":          http.MethodGet,
	}

	paths := doc.Paths.Map()
	got := make([]string, 0, len(paths))
	for p := range paths {
		got = append(got, p)
	}
	sort.Strings(got)
	if len(got) != len(want) {
		t.Errorf("пути документа: %v", got)
	}

	for path, method := range want {
		item := doc.Paths.Find(path)
		if item == nil {
			t.Errorf("путь %s отсутствует", path)
			continue
		}
		if item.GetOperation(method) == nil {
			t.Errorf("%s %s: операция отсутствует", method, path)
		}
	}
}

// TestIssueTokenResponseSchema проверяет схему ответа выдачи токена.
func TestIssueTokenResponseSchema(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	schema := doc.Components.Schemas["IssueTokenResponse"].Value

	valid := map[string]any{
		"token":      "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		"expires_at": "2026-03-01T12:05:00Z",
		"expires_in": float64(300),
	}
	if err := schema.VisitJSON(valid); err != nil {
		t.Errorf("корректный ответ отклонён: %v", err)
	}

	if err := schema.VisitJSON(map[string]any{"token": "x"}); err == nil {
		t.Error("ответ без expires_at и expires_in должен быть отклонён")
	}
}

// TestRaw проверяет, что Raw возвращает непустой документ.
func TestRaw(t *testing.T) {
	if len(Raw()) == 0 {
		t.Fatal("пустой документ")
	}
}
