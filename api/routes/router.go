package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/devicemove-backend/api/controllers"
	"github.com/angelmondragon/devicemove-backend/api/middleware"
	"github.com/angelmondragon/devicemove-backend/internal/coordinator"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
	"github.com/angelmondragon/devicemove-backend/pkg/redis"
)

// NewRouter mounts the migration API. redisClient may be nil, in which case
// idempotency replay is disabled and readiness skips Redis.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	migrations coordinator.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var (
		idem   redis.IdempotencyStore
		redisP redis.Pinger
	)
	if redisClient != nil {
		idem = redisClient
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/migrations", func(r chi.Router) {
		r.Use(middleware.Idempotency(idem, logg))

		r.Post("/", controllers.InitializeMigration(migrations, logg))
		r.Get("/active", controllers.ActiveMigration(migrations, logg))

		r.Route("/{migrationId}", func(r chi.Router) {
			r.Put("/inventory", controllers.RecordSourceInventory(migrations, logg))
			r.Get("/status", controllers.OverallStatus(migrations, logg))
			r.Post("/complete", controllers.CompleteMigration(migrations, logg))
			r.Get("/days/{day}", controllers.DailySummary(migrations, logg))
			r.Get("/report", controllers.Report(migrations, logg))
			r.Get("/baseline", controllers.Baseline(migrations, logg))

			r.Route("/members", func(r chi.Router) {
				r.Post("/", controllers.AddFamilyMember(migrations, logg))
				r.Get("/pending", controllers.PendingActions(migrations, logg))
				r.Route("/{memberName}", func(r chi.Router) {
					r.Post("/adoption", controllers.UpdateAdoptionStatus(migrations, logg))
					r.Post("/payment/events", controllers.RecordPaymentEvent(migrations, logg))
					r.Post("/payment/activate", controllers.ActivateMinorPayment(migrations, logg))
				})
			})

			r.Route("/transfer", func(r chi.Router) {
				r.Patch("/", controllers.UpdateMediaProgress(migrations, logg))
				r.Post("/start", controllers.RecordTransferStart(migrations, logg))
			})

			r.Route("/snapshots", func(r chi.Router) {
				r.Post("/", controllers.RecordStorageSnapshot(migrations, logg))
				r.Get("/", controllers.ListSnapshots(migrations, logg))
			})
		})
	})

	return r
}
