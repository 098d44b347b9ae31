package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики сервисного слоя.
var (
	documentsStoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "di_documents_stored_total",
		Help: "Общее количество сохранённых документов.",
	}, []string{"scope"})

	tokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "di_tokens_issued_total",
		Help: "Общее количество выданных токенов на скачивание.",
	})

	tokenValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "di_token_validations_total",
		Help: "Результаты проверки токенов на скачивание.",
	}, []string{"result"})
)

// Значения метки result для di_token_validations_total.
const (
	validationValid   = "valid"
	validationExpired = "expired"
	validationUnknown = "unknown"
)
