package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elameta/quoteregistry/api/controllers"
	"github.com/elameta/quoteregistry/api/middleware"
	"github.com/elameta/quoteregistry/internal/offers"
	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/pkg/config"
	"github.com/elameta/quoteregistry/pkg/db"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/redis"
)

// NewRouter wires the HTTP surface. redisP is nil when no cache is
// configured; gatherer defaults to the global prometheus registry.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	mediaP controllers.Pinger,
	gatherer prometheus.Gatherer,
	positionService positions.Service,
	offerService offers.Service,
	exportService controllers.ListingExporter,
	importService controllers.PositionImporter,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ready := map[string]controllers.Pinger{"db": dbP, "media": mediaP, "redis": nil}
	if redisP != nil {
		ready["redis"] = redisP
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	defaultLang := offers.ParseLang(cfg.Offer.DefaultLang)
	maxImport := int64(cfg.Media.MaxImportMB) << 20

	r.Route("/api/v1/positions", func(r chi.Router) {
		r.Get("/", controllers.ListPositions(positionService, logg))
		r.Post("/", controllers.CreatePosition(positionService, logg))

		// static paths before /{id}
		r.Get("/columns", controllers.PositionColumns())
		r.Get("/stats", controllers.PositionStats(positionService, logg))
		r.Get("/suggestions", controllers.PositionSuggestions(positionService, logg))
		r.Get("/export.xlsx", controllers.ExportPositions(exportService, logg))
		r.Post("/import", controllers.ImportPositions(importService, maxImport, logg))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.GetPosition(positionService, logg))
			r.Put("/", controllers.UpdatePosition(positionService, logg))
			r.Delete("/", controllers.DeletePosition(positionService, logg))

			r.Put("/prices", controllers.SavePriceLines(positionService, logg))
			r.Post("/prices/overlap-check", controllers.CheckPriceOverlaps(positionService, logg))
			r.Get("/price", controllers.ResolvePrice(positionService, logg))
			r.Get("/offer.pdf", controllers.PositionOfferPDF(offerService, defaultLang, logg))

			r.Post("/drawings", controllers.UploadDrawing(positionService, logg))
			r.Delete("/drawings/{drawingId}", controllers.DeleteDrawing(positionService, logg))
		})
	})

	return r
}
