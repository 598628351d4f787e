package controllers

import (
	"net/http"

	"github.com/swiftcart-dev/swiftcart-backend/api/responses"
	internalbackorders "github.com/swiftcart-dev/swiftcart-backend/internal/backorders"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	pkgerrors "github.com/swiftcart-dev/swiftcart-backend/pkg/errors"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
)

// BackorderList returns the caller's pending drafts, newest first.
func BackorderList(repo internalbackorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backorders repository unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		drafts, err := repo.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list backorder drafts"))
			return
		}

		items := make([]*backorderResponse, 0, len(drafts))
		for i := range drafts {
			items = append(items, newDraftResponse(&drafts[i]))
		}
		responses.WriteSuccess(w, map[string]any{"backorders": items})
	}
}

func newDraftResponse(draft *models.BackorderDraft) *backorderResponse {
	resp := &backorderResponse{
		DraftID:        draft.ID,
		DraftNumber:    draft.DraftNumber,
		Status:         string(draft.Status),
		ProcessedCount: len(draft.Items),
	}
	for _, item := range draft.Items {
		resp.Items = append(resp.Items, backorderItemResponse{
			ProductID:      item.ProductID,
			Name:           item.Name,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			AvailableQty:   item.AvailableQty,
		})
	}
	return resp
}
