package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/api/middleware"
	pkgerrors "github.com/swiftcart-dev/swiftcart-backend/pkg/errors"
)

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed user context")
	}
	return id, nil
}
