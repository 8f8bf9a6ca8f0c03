package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cmsapi/docs"
	"cmsapi/internal/model"
	"cmsapi/internal/service"
)

// Services bundles what the routes dispatch to. Uploads is nil when object
// storage is not configured; the upload routes are then not mounted.
type Services struct {
	Customers service.ResourceService[model.Customer]
	Sellers   service.ResourceService[model.Seller]
	Types     service.ResourceService[model.Type]
	Uploads   service.UploadService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, gatherer prometheus.Gatherer, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	mountResource(app, "/customers", svcs.Customers)
	mountResource(app, "/sellers", svcs.Sellers)
	mountResource(app, "/types", svcs.Types)

	if svcs.Uploads != nil {
		up := app.Group("/upload")
		up.Post("/", UploadFile(svcs.Uploads))
		up.Get("/files", ListFiles(svcs.Uploads))
		up.Get("/files/:id", GetFile(svcs.Uploads))
		up.Get("/files/:id/content", DownloadFile(svcs.Uploads))
		up.Delete("/files/:id", DeleteFile(svcs.Uploads))
	}
}

// mountResource registers the CRUD and relationship routes of one resource.
// /count is registered before /:id so it is not read as an id.
func mountResource[T model.Entity](app *fiber.App, prefix string, svc service.ResourceService[T]) {
	if svc == nil {
		return
	}
	r := app.Group(prefix)
	r.Get("/", Find(svc))
	r.Get("/count", Count(svc))
	r.Get("/:id", FindOne(svc))
	r.Post("/", Create(svc))
	r.Put("/:id", Update(svc))
	r.Delete("/:id", Destroy(svc))
	r.Post("/:id/relationships", CreateRelation(svc))
	r.Put("/:id/relationships", UpdateRelation(svc))
	r.Delete("/:id/relationships", DestroyRelation(svc))
}
