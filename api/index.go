package handler

import (
	"net/http"

	"tabiconst-backend/bootstrap"

	"github.com/gofiber/fiber/v2"
)

var (
	fiberApp *fiber.App
	httpApp  http.Handler
)

func init() {
	var err error
	fiberApp, err = bootstrap.New()
	if err != nil {
		panic("app create: " + err.Error())
	}
	httpApp = bootstrap.Handler(fiberApp)
}

// Handler is the serverless entry point. All requests are rewritten here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()
	httpApp.ServeHTTP(w, r)
}
