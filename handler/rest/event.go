package rest

import (
	"net/http"

	"lendcore/core"
	"lendcore/handler/param"
	"lendcore/handler/render"

	"github.com/go-chi/chi"
)

const defaultLimit = 100

type pagination struct {
	From  int64 `json:"from"`
	Limit int   `json:"limit"`
}

func (p *pagination) limit() int {
	if p.Limit <= 0 || p.Limit > 500 {
		return defaultLimit
	}

	return p.Limit
}

func eventsHandler(events core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params pagination
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		list, err := events.List(r.Context(), params.From, params.limit())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func obligationEventsHandler(events core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params pagination
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		list, err := events.ListByObligation(r.Context(), chi.URLParam(r, "id"), params.From, params.limit())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func pricesHandler(prices core.IPriceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := prices.List(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}
