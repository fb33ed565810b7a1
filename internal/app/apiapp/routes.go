package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lestercardoz11/haven/internal/config"
	authsvc "github.com/lestercardoz11/haven/internal/services/auth"
	candidatesvc "github.com/lestercardoz11/haven/internal/services/candidates"
	interestsvc "github.com/lestercardoz11/haven/internal/services/interests"
	matchessvc "github.com/lestercardoz11/haven/internal/services/matches"
	mediasvc "github.com/lestercardoz11/haven/internal/services/media"
	messagingsvc "github.com/lestercardoz11/haven/internal/services/messaging"
	"github.com/lestercardoz11/haven/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager       *authsvc.JWTManager
	CandidateService *candidatesvc.Service
	InterestService  *interestsvc.Service
	MatchService     *matchessvc.Service
	MessagingService *messagingsvc.Service
	MediaService     *mediasvc.Service
	LocationStore    handlers.LocationStore
	Subscriber       handlers.MessageSubscriber
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	candidateHandler := handlers.NewCandidateHandler(deps.CandidateService)
	interestHandler := handlers.NewInterestHandler(deps.InterestService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	conversationHandler := handlers.NewConversationHandler(deps.MessagingService, deps.Subscriber, deps.Logger)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	locationHandler := handlers.NewLocationHandler(deps.LocationStore)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Get("/candidates", candidateHandler.List)
		r.With(authMW).Get("/candidates/{user_id}", candidateHandler.Get)
		r.With(authMW).Post("/candidates/views", candidateHandler.RecordView)

		r.With(authMW).Post("/interests", interestHandler.Send)
		r.With(authMW).Post("/interests/{id}/respond", interestHandler.Respond)
		r.With(authMW).Post("/passes", interestHandler.Pass)

		r.With(authMW).Get("/matches", matchesHandler.List)
		r.With(authMW).Post("/blocks", matchesHandler.Block)
		r.With(authMW).Post("/reports", matchesHandler.Report)

		r.With(authMW).Get("/conversations", conversationHandler.List)
		r.With(authMW).Get("/conversations/search", conversationHandler.List)
		r.With(authMW).Get("/conversations/{id}/messages", conversationHandler.Messages)
		r.With(authMW).Post("/conversations/{id}/messages", conversationHandler.Send)
		r.With(authMW).Post("/conversations/{id}/read", conversationHandler.MarkRead)
		r.With(authMW).Get("/conversations/{id}/subscribe", conversationHandler.Subscribe)
		r.With(authMW).Get("/messages/unread_count", conversationHandler.UnreadCount)

		r.With(authMW).Post("/media/message-image", mediaHandler.MessageImageUpload)
		r.With(authMW).Post("/profile/location", locationHandler.Save)
	})
}
