package api

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	"github.com/swaggo/swag"

	httpSwagger "github.com/swaggo/http-swagger"
)

type swaggerDoc struct {
	json string
}

func (d swaggerDoc) ReadDoc() string {
	return d.json
}

// RegisterDocsRoutes serves the document as /openapi.json and the Swagger UI
// under /swagger/.
func RegisterDocsRoutes(r chi.Router, doc *openapi3.T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if swag.GetSwagger(swag.Name) == nil {
		swag.Register(swag.Name, swaggerDoc{json: string(raw)})
	}

	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return nil
}
