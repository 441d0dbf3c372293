package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/procureflow-backend/api/controllers"
	"github.com/angelmondragon/procureflow-backend/api/middleware"
	"github.com/angelmondragon/procureflow-backend/internal/auth"
	"github.com/angelmondragon/procureflow-backend/internal/goodsreceipts"
	"github.com/angelmondragon/procureflow-backend/internal/materialrequests"
	"github.com/angelmondragon/procureflow-backend/internal/notifications"
	"github.com/angelmondragon/procureflow-backend/internal/purchaseorders"
	"github.com/angelmondragon/procureflow-backend/pkg/config"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/angelmondragon/procureflow-backend/pkg/metrics"
)

// Dependencies are the services the router exposes.
type Dependencies struct {
	DB               controllers.Pinger
	Redis            controllers.Pinger
	Idempotency      middleware.ResponseStore
	Gatherer         prometheus.Gatherer
	HTTPMetrics      *metrics.HTTPMetrics
	Auth             auth.Service
	Staff            auth.StaffService
	MaterialRequests materialrequests.Service
	PurchaseOrders   purchaseorders.Service
	GoodsReceipts    goodsreceipts.Service
	Notifications    notifications.Service
	Preferences      controllers.PreferenceStore
	Forwarder        controllers.EventForwarder
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, cfg.HTTP.IdempotencyTTL, logg))

		r.Route("/material-requests", func(r chi.Router) {
			r.Get("/", controllers.ListMaterialRequests(deps.MaterialRequests, logg))
			r.Post("/", controllers.SubmitMaterialRequest(deps.MaterialRequests, deps.Forwarder, logg))
			r.Post("/drafts", controllers.SaveMaterialRequestDraft(deps.MaterialRequests, logg))
			r.Route("/{requestId}", func(r chi.Router) {
				r.Get("/", controllers.GetMaterialRequest(deps.MaterialRequests, logg))
				r.Post("/executive-decision", controllers.ExecutiveDecision(deps.MaterialRequests, deps.Forwarder, logg))
				r.Post("/chairman-decision", controllers.ChairmanDecision(deps.MaterialRequests, deps.Forwarder, logg))
				r.Post("/resubmit", controllers.ResubmitMaterialRequest(deps.MaterialRequests, deps.Forwarder, logg))
				r.Post("/payment/process", controllers.ProcessMaterialRequestPayment(deps.MaterialRequests, deps.Forwarder, logg))
				r.Post("/payment/complete", controllers.CompleteMaterialRequestPayment(deps.MaterialRequests, deps.Forwarder, logg))
			})
		})

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", controllers.ListPurchaseOrders(deps.PurchaseOrders, logg))
			r.Post("/", controllers.GeneratePurchaseOrder(deps.PurchaseOrders, deps.Forwarder, logg))
			r.Post("/drafts", controllers.SavePurchaseOrderDraft(deps.PurchaseOrders, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.GetPurchaseOrder(deps.PurchaseOrders, logg))
				r.Post("/forward-to-supply-chain", controllers.ForwardPurchaseOrderToSupplyChain(deps.PurchaseOrders, deps.Forwarder, logg))
				r.Post("/supply-chain-decision", controllers.SupplyChainDecision(deps.PurchaseOrders, deps.Forwarder, logg))
			})
		})

		r.Route("/goods-received-notes", func(r chi.Router) {
			r.Get("/", controllers.ListGoodsReceivedNotes(deps.GoodsReceipts, logg))
			r.Post("/", controllers.CreateGoodsReceivedNote(deps.GoodsReceipts, deps.Forwarder, logg))
			r.Route("/{noteId}", func(r chi.Router) {
				r.Get("/", controllers.GetGoodsReceivedNote(deps.GoodsReceipts, logg))
				r.Post("/inspect", controllers.InspectGoodsReceivedNote(deps.GoodsReceipts, deps.Forwarder, logg))
				r.Post("/forward-to-finance", controllers.ForwardGoodsReceivedNoteToFinance(deps.GoodsReceipts, deps.Forwarder, logg))
				r.Post("/payment/process", controllers.ProcessGoodsReceivedNotePayment(deps.GoodsReceipts, deps.Forwarder, logg))
				r.Post("/payment/complete", controllers.CompleteGoodsReceivedNotePayment(deps.GoodsReceipts, deps.Forwarder, logg))
				r.Post("/reject", controllers.RejectGoodsReceivedNote(deps.GoodsReceipts, deps.Forwarder, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Route("/preferences", func(r chi.Router) {
				r.Get("/", controllers.GetNotificationPreferences(deps.Preferences, logg))
				r.Put("/", controllers.SaveNotificationPreferences(deps.Preferences, logg))
				r.Post("/muted/{eventType}", controllers.MuteNotificationEvent(deps.Preferences, logg))
				r.Delete("/muted/{eventType}", controllers.UnmuteNotificationEvent(deps.Preferences, logg))
			})
		})

		r.Route("/admin/staff", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
			r.Get("/", controllers.ListStaff(deps.Staff, logg))
			r.Post("/", controllers.RegisterStaff(deps.Staff, logg))
			r.Delete("/{userId}", controllers.DeactivateStaff(deps.Staff, logg))
		})
	})

	return r
}
