package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/Dosada05/club-billing/handlers"
	"github.com/Dosada05/club-billing/middleware"
	"github.com/Dosada05/club-billing/models"
)

type HandlerSet struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Catalog    *handlers.CatalogHandler
	Session    *handlers.SessionHandler
	LineItem   *handlers.LineItemHandler
	Membership *handlers.MembershipHandler
	Expense    *handlers.ExpenseHandler
	Report     *handlers.ReportHandler
	Club       *handlers.ClubHandler
	Live       *handlers.LiveHandler
}

func SetupRoutes(h HandlerSet, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", h.Auth.Login)

	// Всё остальное только с токеном: стойка регистрации работает под
	// учёткой сотрудника клуба.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(jwtSecret))

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListPlayers)
			r.Post("/", h.Player.CreatePlayer)
			r.Get("/{playerID}", h.Player.GetPlayerByID)
			r.Put("/{playerID}", h.Player.UpdatePlayer)
			r.Post("/{playerID}/photo", h.Player.UploadPlayerPhoto)
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", h.Catalog.ListServices)
			r.Get("/{serviceID}", h.Catalog.GetServiceByID)

			// Каталог и цены правят только менеджер и админ.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin, models.RoleManager))
				r.Post("/", h.Catalog.CreateService)
				r.Put("/{serviceID}", h.Catalog.UpdateService)
			})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.Session.ListSessions)
			r.Post("/", h.Session.CheckIn)
			r.Get("/{sessionID}", h.Session.GetSessionByID)
			r.Post("/{sessionID}/checkout", h.Session.CheckOut)
			r.Post("/{sessionID}/items", h.LineItem.AddLineItem)
		})

		r.Route("/line-items", func(r chi.Router) {
			r.Patch("/{lineItemID}/quantity", h.LineItem.AdjustQuantity)
			r.Delete("/{lineItemID}", h.LineItem.RemoveLineItem)
		})

		r.Route("/memberships", func(r chi.Router) {
			r.Get("/payments", h.Membership.ListPayments)
			r.Post("/payments", h.Membership.RecordPayment)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleManager))
			r.Get("/", h.Expense.ListExpenses)
			r.Post("/", h.Expense.CreateExpense)
			r.Put("/{expenseID}", h.Expense.UpdateExpense)
			r.Delete("/{expenseID}", h.Expense.DeleteExpense)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleManager))
			r.Get("/revenue", h.Report.RevenueReport)
			r.Get("/distribution", h.Report.ServiceDistribution)
			r.Get("/dashboard", h.Report.DashboardStats)
		})

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/{clubID}", h.Club.GetClubByID)
			r.Post("/{clubID}/logo", h.Club.UploadClubLogo)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin))
				r.Get("/", h.Club.ListClubs)
			})
		})

		r.Get("/ws/clubs/{clubID}", h.Live.ServeClubRoom)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/auth/register", h.Auth.Register)
		})
	})

	return router
}
