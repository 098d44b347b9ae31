// tokens.go — выдача токенов и скачивание подписанного документа по токену.
package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/bigkaa/document-intake/internal/api/errors"
	"github.com/bigkaa/document-intake/internal/api/routes"
)

type issueTokenRequest struct {
	Nss string `json:"nss"`
}

type issueTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	ExpiresIn int64  `json:"expires_in"`
}

// maxTokenRequestSize — ограничение тела POST /tokens.
const maxTokenRequestSize = 4 << 10

// IssueToken обрабатывает POST /tokens.
// Тело: JSON {"nss": "..."} или application/x-www-form-urlencoded с полем nss.
func (h *APIHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTokenRequestSize)

	var nss string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req issueTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
			return
		}
		nss = req.Nss
	} else {
		if err := r.ParseForm(); err != nil {
			apierrors.ValidationError(w, "Некорректное тело запроса")
			return
		}
		nss = r.PostForm.Get("nss")
	}

	if strings.TrimSpace(nss) == "" {
		apierrors.ValidationError(w, "Поле 'nss' обязательно")
		return
	}

	tok, err := h.tokens.Issue(r.Context(), nss)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusCreated, issueTokenResponse{
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt.UTC().Format(time.RFC3339),
		ExpiresIn: int64(h.tokens.TTL() / time.Second),
	})
}

// GetSignedDocument обрабатывает GET /signed-document.
// Токен передаётся в заголовке Authorization: Bearer <token>
// или в query-параметре token. Заголовок имеет приоритет.
func (h *APIHandler) GetSignedDocument(w http.ResponseWriter, r *http.Request, params routes.GetSignedDocumentParams) {
	value := bearerToken(r)
	if value == "" && params.Token != nil {
		value = *params.Token
	}

	doc, _, err := h.signed.Fetch(r.Context(), value)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer doc.File.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
	w.Header().Set("Cache-Control", "no-store")

	// ServeContent выставляет Content-Length и поддерживает Range
	http.ServeContent(w, r, doc.Name, doc.ModTime, doc.File)
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	scheme, value, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
