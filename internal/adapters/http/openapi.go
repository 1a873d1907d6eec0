package httpadapter

import (
	"context"
	_ "embed"
	"fmt"
	"mime"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

//go:embed openapi.yaml
var openAPIDocument []byte

type apiContract struct {
	doc    *openapi3.T
	router routers.Router
}

func loadContract() (*apiContract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &apiContract{doc: doc, router: router}, nil
}

func mustLoadContract() *apiContract {
	contract, err := loadContract()
	if err != nil {
		panic(err)
	}
	return contract
}

// contract is parsed once; the document is embedded so a failure here is a
// build defect.
var contract = mustLoadContract()

// contractMiddleware validates parameters and JSON bodies of described
// routes. Multipart bodies are left to the handlers; undescribed routes such
// as /metrics pass through.
func contractMiddleware(c *apiContract, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := c.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				ExcludeRequestBody: isMultipart(r),
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			writeError(w, domain.WrapError(domain.ErrInvalidInput, "validate request", err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPIDocument)
}
