// handler.go — основной обработчик API, реализующий routes.ServerInterface.
// Объединяет health и бизнес-обработчики.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/document-intake/internal/api/errors"
	"github.com/bigkaa/document-intake/internal/api/routes"
	"github.com/bigkaa/document-intake/internal/service"
)

// Проверка соответствия интерфейсу на этапе компиляции.
var _ routes.ServerInterface = (*APIHandler)(nil)

// UploadLimits — ограничения на размер multipart-запросов.
type UploadLimits struct {
	// MaxMemory — буфер multipart в памяти, остаток уходит во временные файлы
	MaxMemory int64
	// MaxUploadSize — максимальный размер тела запроса
	MaxUploadSize int64
}

// APIHandler — основной обработчик API Document Intake.
// Реализует routes.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	documents *service.DocumentService
	tokens    *service.TokenService
	signed    *service.SignedDocumentService
	health    *HealthHandler
	apiSpec   []byte
	limits    UploadLimits
	logger    *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	documents *service.DocumentService,
	tokens *service.TokenService,
	signed *service.SignedDocumentService,
	health *HealthHandler,
	apiSpec []byte,
	limits UploadLimits,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		documents: documents,
		tokens:    tokens,
		signed:    signed,
		health:    health,
		apiSpec:   apiSpec,
		limits:    limits,
		logger:    logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// GetOpenAPI — встроенный OpenAPI-документ.
func (h *APIHandler) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.apiSpec)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError отображает ошибку сервисного слоя в HTTP-ответ.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNamespaceNotFound):
		apierrors.NotFound(w, "NSS не найден")
	case errors.Is(err, service.ErrNoDocument):
		apierrors.NotFound(w, "Подписанный документ не найден")
	case errors.Is(err, service.ErrUnauthorized):
		apierrors.Unauthorized(w, "Токен недействителен или истёк")
	case errors.Is(err, service.ErrStorageUnavailable):
		h.logger.Error("Ошибка файлового хранилища",
			slog.String("route", routePattern(r)),
			slog.String("error", err.Error()),
		)
		apierrors.StorageUnavailable(w, "Хранилище документов временно недоступно")
	case errors.Is(err, service.ErrTokenStoreUnavailable):
		h.logger.Error("Ошибка хранилища токенов",
			slog.String("route", routePattern(r)),
			slog.String("error", err.Error()),
		)
		apierrors.ServiceUnavailable(w, "Хранилище токенов временно недоступно")
	default:
		h.logger.Error("Внутренняя ошибка",
			slog.String("route", routePattern(r)),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}

// routePattern возвращает шаблон маршрута без значения nss.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// ParamErrorHandler — обработчик ошибок разбора параметров маршрутов.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	apierrors.ValidationError(w, err.Error())
}
