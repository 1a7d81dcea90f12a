package lifecycle

import (
	"context"

	"github.com/predial/vistoria/pkg/apperr"
	"github.com/predial/vistoria/pkg/models"
)

// Identity is the authenticated caller extracted from the bearer credential.
// A zero ID means no caller identity is present.
type Identity struct {
	ID   int64
	Role string
}

func (id Identity) Authenticated() bool {
	return id.ID > 0
}

// RequireRole fails with Unauthenticated when no caller is present and with
// Forbidden when the caller's role is not in the allowed set.
func RequireRole(caller Identity, roles ...string) error {
	if !caller.Authenticated() {
		return apperr.New(apperr.Unauthenticated, "not authorized to access this route")
	}
	for _, role := range roles {
		if caller.Role == role {
			return nil
		}
	}
	return apperr.New(apperr.Forbidden, "access denied: insufficient permissions")
}

// CanMutateSurvey implements the ownership rule for survey mutation: the
// creating engineer owns the survey, admins override.
func CanMutateSurvey(caller Identity, survey *models.Survey) error {
	if !caller.Authenticated() {
		return apperr.New(apperr.Unauthenticated, "not authorized to access this route")
	}
	if caller.Role == models.RoleAdmin || survey.EngineerID == caller.ID {
		return nil
	}
	return apperr.New(apperr.Forbidden, "access denied to this survey")
}

// canReadSurvey allows engineers and admins through, and clients only when
// the survey belongs to their own client profile.
func (e *Engine) canReadSurvey(ctx context.Context, caller Identity, survey *models.Survey) error {
	if !caller.Authenticated() {
		return apperr.New(apperr.Unauthenticated, "not authorized to access this route")
	}
	if caller.Role != models.RoleClient {
		return nil
	}

	profile, err := e.clients.GetClientByUserID(ctx, caller.ID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "lookup client profile")
	}
	if profile == nil || profile.ID != survey.ClientID {
		return apperr.New(apperr.Forbidden, "access denied to this survey")
	}
	return nil
}
