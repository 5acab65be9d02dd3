package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/streamblocks/actormachine/api"
)

// LoadDocument parses and validates the embedded OpenAPI document.
func LoadDocument(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

var document = sync.OnceValues(func() (*openapi3.T, error) {
	return LoadDocument(context.Background())
})

// validate returns chi middleware checking requests against the operation
// documented for path. It must wrap handlers mounted on that path.
func (s *Server) validate(path string) func(http.Handler) http.Handler {
	doc, err := document()
	if err != nil {
		panic(err)
	}
	item := doc.Paths.Value(path)
	if item == nil {
		panic(fmt.Sprintf("openapi document has no path %s", path))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := item.GetOperation(r.Method)
			if op == nil {
				next.ServeHTTP(w, r)
				return
			}

			params := make(map[string]string)
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				for i, k := range rctx.URLParams.Keys {
					params[k] = rctx.URLParams.Values[i]
				}
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route: &routers.Route{
					Spec:      doc,
					Path:      path,
					PathItem:  item,
					Method:    r.Method,
					Operation: op,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				s.Logger.Debug("Request rejected", "path", path, "error", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GraphParams are the query parameters of the graph rendering endpoints.
type GraphParams struct {
	Current *string `form:"current,omitempty" json:"current,omitempty"`
}

// DecideParams are the query parameters of POST /actors/{id}/decide.
type DecideParams struct {
	Strategy *string `form:"strategy,omitempty" json:"strategy,omitempty"`
}

func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

func bindGraphParams(r *http.Request) (GraphParams, error) {
	var p GraphParams
	if err := runtime.BindQueryParameter("form", true, false, "current", r.URL.Query(), &p.Current); err != nil {
		return p, fmt.Errorf("invalid format for parameter current: %w", err)
	}
	return p, nil
}

func bindDecideParams(r *http.Request) (DecideParams, error) {
	var p DecideParams
	if err := runtime.BindQueryParameter("form", true, false, "strategy", r.URL.Query(), &p.Strategy); err != nil {
		return p, fmt.Errorf("invalid format for parameter strategy: %w", err)
	}
	return p, nil
}
