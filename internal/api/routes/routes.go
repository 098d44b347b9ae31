// Пакет routes — HTTP-маршруты Document Intake по контракту apispec/openapi.yaml.
// ServerInterface описывает операции, ServerInterfaceWrapper извлекает
// параметры пути и запроса через oapi-codegen runtime.
package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// GetSignedDocumentParams — параметры GET /signed-document.
type GetSignedDocumentParams struct {
	// Token — токен из query-параметра (альтернатива заголовку Authorization)
	Token *string `form:"token,omitempty" json:"token,omitempty"`
}

// ServerInterface — операции API.
type ServerInterface interface {
	// (POST /upload)
	UploadDocuments(w http.ResponseWriter, r *http.Request)
	// (POST /upload-signature)
	UploadSignature(w http.ResponseWriter, r *http.Request)
	// (GET /check-signature/{nss})
	CheckSignature(w http.ResponseWriter, r *http.Request, nss string)
	// (GET /files/{nss})
	ListFiles(w http.ResponseWriter, r *http.Request, nss string)
	// (POST /tokens)
	IssueToken(w http.ResponseWriter, r *http.Request)
	// (GET /signed-document)
	GetSignedDocument(w http.ResponseWriter, r *http.Request, params GetSignedDocumentParams)
	// (GET /health/live)
	HealthLive(w http.ResponseWriter, r *http.Request)
	// (GET /health/ready)
	HealthReady(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// (GET /openapi.yaml)
	GetOpenAPI(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc — middleware отдельной операции.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper — адаптер ServerInterface к http.HandlerFunc.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError — параметр не удалось разобрать.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("некорректный формат параметра %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// UploadDocuments — обёртка POST /upload.
func (siw *ServerInterfaceWrapper) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.UploadDocuments)
}

// UploadSignature — обёртка POST /upload-signature.
func (siw *ServerInterfaceWrapper) UploadSignature(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.UploadSignature)
}

// CheckSignature — обёртка GET /check-signature/{nss}.
func (siw *ServerInterfaceWrapper) CheckSignature(w http.ResponseWriter, r *http.Request) {
	nss, ok := siw.bindNss(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CheckSignature(w, r, nss)
	})
}

// ListFiles — обёртка GET /files/{nss}.
func (siw *ServerInterfaceWrapper) ListFiles(w http.ResponseWriter, r *http.Request) {
	nss, ok := siw.bindNss(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListFiles(w, r, nss)
	})
}

// IssueToken — обёртка POST /tokens.
func (siw *ServerInterfaceWrapper) IssueToken(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.IssueToken)
}

// GetSignedDocument — обёртка GET /signed-document.
func (siw *ServerInterfaceWrapper) GetSignedDocument(w http.ResponseWriter, r *http.Request) {
	var params GetSignedDocumentParams

	err := runtime.BindQueryParameter("form", true, false, "token", r.URL.Query(), &params.Token)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "token", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSignedDocument(w, r, params)
	})
}

// HealthLive — обёртка GET /health/live.
func (siw *ServerInterfaceWrapper) HealthLive(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthLive)
}

// HealthReady — обёртка GET /health/ready.
func (siw *ServerInterfaceWrapper) HealthReady(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthReady)
}

// GetMetrics — обёртка GET /metrics.
func (siw *ServerInterfaceWrapper) GetMetrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetMetrics)
}

// GetOpenAPI — обёртка GET /openapi.yaml.
func (siw *ServerInterfaceWrapper) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetOpenAPI)
}

// bindNss извлекает и декодирует параметр пути nss.
func (siw *ServerInterfaceWrapper) bindNss(w http.ResponseWriter, r *http.Request) (string, bool) {
	var nss string

	err := runtime.BindStyledParameterWithOptions("simple", "nss", chi.URLParam(r, "nss"), &nss,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "nss", Err: err})
		return "", false
	}
	return nss, true
}

// serve применяет middleware операций и вызывает обработчик.
func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	var handler http.Handler = fn
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// ChiServerOptions — параметры регистрации маршрутов.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux регистрирует маршруты si в существующем chi.Router.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions регистрирует маршруты si с указанными параметрами.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/upload", wrapper.UploadDocuments)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/upload-signature", wrapper.UploadSignature)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/check-signature/{nss}", wrapper.CheckSignature)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/files/{nss}", wrapper.ListFiles)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/tokens", wrapper.IssueToken)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/signed-document", wrapper.GetSignedDocument)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/live", wrapper.HealthLive)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/ready", wrapper.HealthReady)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.GetMetrics)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/openapi.yaml", wrapper.GetOpenAPI)
	})

	return r
}
