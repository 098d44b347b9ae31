// documents.go — обработчики загрузки документов, проверки подписи и листинга.
package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	apierrors "github.com/bigkaa/document-intake/internal/api/errors"
	"github.com/bigkaa/document-intake/internal/domain/model"
)

// Сообщения об успехе сохранены в прежнем виде: их показывает клиентское приложение.
const (
	msgFilesUploaded     = "Archivos subidos exitosamente"
	msgSignatureUploaded = "Archivo de firma subido exitosamente"
)

type uploadResponse struct {
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

type uploadSignatureResponse struct {
	Message string `json:"message"`
	File    string `json:"file"`
}

type checkSignatureResponse struct {
	SignatureExists bool `json:"signature_exists"`
}

type listFilesResponse struct {
	Files []string `json:"files"`
}

// UploadDocuments обрабатывает POST /upload.
// Multipart form: nss (обязательно), files (один или несколько файлов).
func (h *APIHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}
	defer form.RemoveAll() //nolint:errcheck // временные файлы multipart

	nss := formValue(form, "nss")
	headers := form.File["files"]
	if nss == "" || (len(headers) == 0 && len(form.Value["files"]) == 0) {
		apierrors.ValidationError(w, "Поля 'nss' и 'files' обязательны")
		return
	}
	// Часть без имени файла multipart относит к обычным полям формы
	if len(form.Value["files"]) > 0 {
		apierrors.ValidationError(w, "Каждый файл в поле 'files' должен иметь имя")
		return
	}

	uploads, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	names, err := h.documents.StoreDocuments(r.Context(), nss, uploads)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Message: msgFilesUploaded, Files: names})
}

// UploadSignature обрабатывает POST /upload-signature.
// Multipart form: nss (обязательно), file (обязательно).
func (h *APIHandler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}
	defer form.RemoveAll() //nolint:errcheck // временные файлы multipart

	nss := formValue(form, "nss")
	headers := form.File["file"]
	if nss == "" || (len(headers) == 0 && len(form.Value["file"]) == 0) {
		apierrors.ValidationError(w, "Поля 'nss' и 'file' обязательны")
		return
	}
	if len(headers) == 0 {
		apierrors.ValidationError(w, "Файл в поле 'file' должен иметь имя")
		return
	}

	uploads, closeAll, err := openUploads(headers[:1])
	defer closeAll()
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	name, err := h.documents.StoreSignature(r.Context(), nss, uploads[0])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadSignatureResponse{Message: msgSignatureUploaded, File: name})
}

// CheckSignature обрабатывает GET /check-signature/{nss}.
// Всегда 200: отсутствие пространства имён означает signature_exists=false.
func (h *APIHandler) CheckSignature(w http.ResponseWriter, _ *http.Request, nss string) {
	writeJSON(w, http.StatusOK, checkSignatureResponse{SignatureExists: h.documents.HasSignature(nss)})
}

// ListFiles обрабатывает GET /files/{nss}.
func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request, nss string) {
	names, err := h.documents.ListNamespace(nss)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listFilesResponse{Files: names})
}

// parseMultipart ограничивает размер тела и разбирает multipart form.
func (h *APIHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (*multipart.Form, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxUploadSize)

	if err := r.ParseMultipartForm(h.limits.MaxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.ValidationError(w, fmt.Sprintf("Размер запроса превышает %d байт", maxErr.Limit))
			return nil, false
		}
		apierrors.ValidationError(w, fmt.Sprintf("Ошибка парсинга multipart: %s", err.Error()))
		return nil, false
	}
	return r.MultipartForm, true
}

// openUploads открывает файлы multipart. closeAll закрывает все открытые файлы
// и безопасна при ошибке.
func openUploads(headers []*multipart.FileHeader) (uploads []model.Upload, closeAll func(), err error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll = func() {
		for _, f := range files {
			f.Close()
		}
	}

	uploads = make([]model.Upload, 0, len(headers))
	for _, fh := range headers {
		f, openErr := fh.Open()
		if openErr != nil {
			return nil, closeAll, fmt.Errorf("ошибка чтения файла %q: %w", fh.Filename, openErr)
		}
		files = append(files, f)
		uploads = append(uploads, model.Upload{Filename: fh.Filename, Reader: f})
	}
	return uploads, closeAll, nil
}

// formValue возвращает первое значение поля формы.
func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
