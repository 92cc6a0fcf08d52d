package rest

import (
	"net/http"

	"lendcore/core"
	"lendcore/handler/render"

	"github.com/go-chi/chi"
)

// Handle read api plus the permissionless bank maintenance calls
func Handle(
	banks core.IBankStore,
	obligations core.IObligationStore,
	prices core.IPriceStore,
	events core.IEventStore,
	bankz core.IBankService,
	risk core.IRiskEngine,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, core.ErrInvalidArgument)
	})

	router.Route("/banks", func(r chi.Router) {
		r.Get("/", listBanksHandler(banks))
		r.Get("/{id}", findBankHandler(banks))
		r.Post("/{id}/accrue", accrueHandler(bankz))
		r.Post("/{id}/appreciation", refreshAppreciationHandler(bankz))
		r.Post("/{id}/propagate", propagateHandler(bankz))
	})

	router.Route("/obligations", func(r chi.Router) {
		r.Get("/", listObligationsHandler(banks, obligations))
		r.Get("/{id}", findObligationHandler(banks, obligations))
		r.Get("/{id}/health", healthHandler(banks, obligations, risk))
		r.Get("/{id}/events", obligationEventsHandler(events))
	})

	router.Get("/events", eventsHandler(events))
	router.Get("/prices", pricesHandler(prices))

	return router
}
