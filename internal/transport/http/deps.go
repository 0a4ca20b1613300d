package http

import (
	"github.com/go-market-api/internal/application/notify"
	"github.com/go-market-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-market-api/internal/infrastructure/jwt"
	s3infra "github.com/go-market-api/internal/infrastructure/s3"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	ListingRepo      *dynamo.ListingRepo
	ConversationRepo *dynamo.ConversationRepo
	MessageRepo      *dynamo.MessageRepo
	ReviewRepo       *dynamo.ReviewRepo
	CategoryRepo     *dynamo.CategoryRepo
	ImageRepo        *dynamo.ImageRepo
	S3Store          *s3infra.Store
	Notifier         notify.Notifier
	JWTProvider      *jwtinfra.Provider
}
