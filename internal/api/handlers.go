package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/susu3304/warikan/internal/commands"
	"github.com/susu3304/warikan/internal/group"
	"github.com/susu3304/warikan/internal/ledger"
	"github.com/susu3304/warikan/internal/report"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleListGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": a.groups.IDs()})
}

func (a *API) handleCloseGroup(w http.ResponseWriter, r *http.Request) {
	if err := a.groups.Close(mux.Vars(r)["group_id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "group closed"})
}

func (a *API) handleRegisterParticipant(w http.ResponseWriter, r *http.Request) {
	var p ledger.Participant
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	g := a.groups.Open(mux.Vars(r)["group_id"])
	if err := g.Register(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	p.ID = strings.TrimSpace(p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Directory().List())
}

func (a *API) handleGetParticipant(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}
	p, err := g.Directory().Lookup(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}

	var req struct {
		Kind   ledger.Kind     `json:"kind"`
		Amount decimal.Decimal `json:"amount"`
		PaidBy string          `json:"paid_by"`
		Shares []ledger.Share  `json:"shares"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	e, err := g.AddExpense(r.Context(), req.Kind, req.Amount, req.PaidBy, req.Shares)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (a *API) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Ledger().Expenses())
}

func (a *API) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}

	var req struct {
		PaidBy string          `json:"paid_by"`
		PaidTo string          `json:"paid_to"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := g.Pay(r.Context(), req.PaidBy, req.PaidTo, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"payment": p,
		"message": report.Payment(g.Directory(), p),
	})
}

func (a *API) handleListPayments(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Ledger().Payments())
}

func (a *API) handleAllBalances(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}
	debts := g.Ledger().AllNonZeroBalances()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"debts":  debts,
		"report": report.All(g.Directory(), debts),
	})
}

func (a *API) handleBalancesFor(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	balances, err := g.Ledger().BalancesFor(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if balances == nil {
		balances = []ledger.Balance{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"participant": id,
		"balances":    balances,
		"report":      report.For(g.Directory(), id, balances),
	})
}

func (a *API) handleNetBalance(w http.ResponseWriter, r *http.Request) {
	g, ok := a.group(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	amount, err := g.Ledger().NetBalance(vars["id"], vars["other"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"participant": vars["id"],
		"other":       vars["other"],
		"amount":      amount,
	})
}

func (a *API) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	g := a.groups.Open(mux.Vars(r)["group_id"])
	out, err := commands.New(g).Execute(r.Context(), req.Command)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": out})
}

// Helper functions
func (a *API) group(w http.ResponseWriter, r *http.Request) (*group.Group, bool) {
	g, err := a.groups.Get(mux.Vars(r)["group_id"])
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return g, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, group.ErrGroupNotFound), errors.Is(err, ledger.ErrUnknownParticipant):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateParticipant):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidSplit),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidParticipant):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, commands.ErrSyntax), errors.Is(err, commands.ErrUnknownCommand):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
