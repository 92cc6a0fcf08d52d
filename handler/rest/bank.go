package rest

import (
	"net/http"
	"time"

	"lendcore/core"
	"lendcore/handler/param"
	"lendcore/handler/render"
	"lendcore/handler/views"

	"github.com/go-chi/chi"
)

func listBanksHandler(banks core.IBankStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Kind core.BankKind `json:"kind"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		var (
			list []*core.Bank
			err  error
		)

		if params.Kind != "" {
			list, err = banks.ListByKind(r.Context(), params.Kind)
		} else {
			list, err = banks.List(r.Context())
		}

		if err != nil {
			render.Error(w, err)
			return
		}

		items := make([]*views.Bank, 0, len(list))
		for _, bank := range list {
			items = append(items, views.BankView(bank))
		}

		render.JSON(w, items)
	}
}

func findBankHandler(banks core.IBankStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bank, err := banks.Find(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.BankView(bank))
	}
}

func accrueHandler(bankz core.IBankService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bank, err := bankz.AccrueInterest(r.Context(), chi.URLParam(r, "id"), time.Now())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.BankView(bank))
	}
}

func refreshAppreciationHandler(bankz core.IBankService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pool core.StakePoolState
		if err := param.Binding(r, &pool); err != nil {
			render.Error(w, err)
			return
		}

		bank, err := bankz.RefreshAppreciationRate(r.Context(), chi.URLParam(r, "id"), &pool)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.BankView(bank))
	}
}

func propagateHandler(bankz core.IBankService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bank, err := bankz.PropagateStakedSettings(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.BankView(bank))
	}
}
