package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/middleware"
	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
	"github.com/repairhub/repairhub-api/services"
)

// ActorResolver turns the authenticated JWT subject into the acting user
type ActorResolver struct {
	users *repositories.UserRepository
}

func NewActorResolver(db *gorm.DB) *ActorResolver {
	return &ActorResolver{users: repositories.NewUserRepository(db)}
}

// Resolve writes the error response and returns false when there is no usable actor
func (r *ActorResolver) Resolve(c *gin.Context) (services.Actor, *models.User, bool) {
	auth0ID, err := middleware.Subject(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return services.Actor{}, nil, false
	}

	user, err := r.users.FindByAuth0ID(c.Request.Context(), auth0ID)
	if repositories.IsNotFound(err) {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "No user is provisioned for this account")
		return services.Actor{}, nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user")
		return services.Actor{}, nil, false
	}

	if claimed := middleware.ClaimedRole(c); claimed != "" && claimed != user.Role {
		config.Logger().Debug("token role differs from the stored role",
			zap.String("user_id", user.ID.String()),
			zap.String("claimed", string(claimed)),
			zap.String("stored", string(user.Role)),
		)
	}

	return services.Actor{UserID: user.ID, Role: user.Role}, user, true
}
