package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/iru21/datingapp/backend/internal/config"
	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	matchessvc "github.com/iru21/datingapp/backend/internal/services/matches"
	messagesvc "github.com/iru21/datingapp/backend/internal/services/messages"
	notifysvc "github.com/iru21/datingapp/backend/internal/services/notifications"
	ratingsvc "github.com/iru21/datingapp/backend/internal/services/ratings"
	suggestsvc "github.com/iru21/datingapp/backend/internal/services/suggestions"
	userssvc "github.com/iru21/datingapp/backend/internal/services/users"
	"github.com/iru21/datingapp/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService          *authsvc.Service
	UsersService         *userssvc.Service
	RatingsService       *ratingsvc.Service
	MatchesService       *matchessvc.Service
	MessagesService      *messagesvc.Service
	NotificationsService *notifysvc.Service
	SuggestionsService   *suggestsvc.Service
	Logger               *zap.Logger
	Config               config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Logger)
	usersHandler := handlers.NewUsersHandler(deps.UsersService, deps.Logger)
	ratingsHandler := handlers.NewRatingsHandler(deps.RatingsService, deps.Logger)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchesService, deps.Logger)
	messagesHandler := handlers.NewMessagesHandler(deps.MessagesService, deps.Logger)
	notificationsHandler := handlers.NewNotificationsHandler(deps.NotificationsService, deps.Logger)
	suggestionsHandler := handlers.NewSuggestionsHandler(deps.SuggestionsService, deps.Logger)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Healthz)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Get("/users/me", usersHandler.Me)
		r.Post("/users/me/telegram", usersHandler.LinkTelegram)
		r.Delete("/users/me/telegram", usersHandler.UnlinkTelegram)
		r.Get("/users/{userID}", usersHandler.GetProfile)

		r.Post("/ratings", ratingsHandler.Rate)
		r.Get("/ratings/received/count", ratingsHandler.LikesReceived)
		r.Get("/ratings/{userID}", ratingsHandler.GetRating)
		r.Delete("/ratings/{userID}", ratingsHandler.DeleteRating)
		r.Get("/ratings/{userID}/mutual", ratingsHandler.MutualLike)

		r.Get("/matches", matchesHandler.List)
		r.Get("/matches/{matchID}", matchesHandler.GetByID)
		r.Post("/matches/{matchID}/unmatch", matchesHandler.Unmatch)
		r.Delete("/matches/{matchID}", matchesHandler.Delete)
		r.Get("/matches/{matchID}/messages", messagesHandler.History)
		r.Post("/matches/{matchID}/messages", messagesHandler.Send)
		r.Delete("/matches/{matchID}/messages", messagesHandler.DeleteConversation)

		r.Get("/messages/unread/count", messagesHandler.UnreadCount)
		r.Post("/messages/{messageID}/read", messagesHandler.MarkRead)
		r.Delete("/messages/{messageID}", messagesHandler.DeleteMessage)

		r.Get("/notifications", notificationsHandler.List)
		r.Get("/notifications/unread/count", notificationsHandler.UnreadCount)
		r.Post("/notifications/read_all", notificationsHandler.MarkAllRead)
		r.Post("/notifications/{notificationID}/read", notificationsHandler.MarkRead)
		r.Delete("/notifications/{notificationID}", notificationsHandler.Delete)
		r.Delete("/notifications", notificationsHandler.DeleteAll)

		r.Get("/suggestions", suggestionsHandler.List)
		r.Get("/suggestions/count", suggestionsHandler.AvailableCount)
		r.Get("/preferences", suggestionsHandler.GetPreferences)
		r.Put("/preferences", suggestionsHandler.UpdatePreferences)
	})
}
