package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func Handler() http.Handler {
	// The OpenAPI document itself is served from api/openapi.yml at the root.
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}
