package rest

import (
	"fmt"
	"net/http"
	"time"

	"lendcore/core"
	"lendcore/handler/param"
	"lendcore/handler/render"
	"lendcore/handler/views"
	"lendcore/pkg/lending"
	obligationservice "lendcore/service/obligation"

	"github.com/go-chi/chi"
)

func listObligationsHandler(banks core.IBankStore, obligations core.IObligationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Owner string `json:"owner"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		if params.Owner == "" {
			render.Error(w, fmt.Errorf("%w: owner required", core.ErrInvalidArgument))
			return
		}

		list, err := obligations.ListByOwner(ctx, params.Owner)
		if err != nil {
			render.Error(w, err)
			return
		}

		items := make([]*views.Obligation, 0, len(list))
		for _, ob := range list {
			m, err := obligationservice.LoadBanks(ctx, banks, ob)
			if err != nil {
				render.Error(w, err)
				return
			}

			items = append(items, views.ObligationView(ob, m))
		}

		render.JSON(w, items)
	}
}

func findObligationHandler(banks core.IBankStore, obligations core.IObligationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ob, err := obligations.Find(ctx, chi.URLParam(r, "id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		m, err := obligationservice.LoadBanks(ctx, banks, ob)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.ObligationView(ob, m))
	}
}

func healthHandler(banks core.IBankStore, obligations core.IObligationStore, risk core.IRiskEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Requirement core.RequirementType `json:"requirement"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		switch params.Requirement {
		case "":
			params.Requirement = core.RequirementMaintenance
		case core.RequirementInitial, core.RequirementMaintenance, core.RequirementEquity:
		default:
			render.Error(w, fmt.Errorf("%w: requirement %q", core.ErrInvalidArgument, params.Requirement))
			return
		}

		ob, err := obligations.Find(ctx, chi.URLParam(r, "id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		m, err := obligationservice.LoadBanks(ctx, banks, ob)
		if err != nil {
			render.Error(w, err)
			return
		}

		now := time.Now()
		for _, bank := range m {
			lending.AccrueInterest(bank, now)
		}

		health, err := risk.Health(ctx, ob, m, params.Requirement, now)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, health)
	}
}
