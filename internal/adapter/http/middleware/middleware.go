package middleware

import (
	"context"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
)

type (
	TokenValidator interface {
		Validate(ctx context.Context, token string) (*models.Principal, error)
	}

	Middleware struct {
		auth TokenValidator
		log  logger.Logger
	}
)

func NewMiddleware(auth TokenValidator, log logger.Logger) *Middleware {
	return &Middleware{
		auth: auth,
		log:  log,
	}
}
