package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02"

func (s *Server) handleAddExpenseForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "add_expense.html", pageData{Today: time.Now().Format(dateLayout)})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	rc := requestContextFrom(r.Context())

	form := map[string]string{
		"date":        sanitizeInput(r.PostForm.Get("date")),
		"category":    sanitizeInput(r.PostForm.Get("category")),
		"amount":      sanitizeInput(r.PostForm.Get("amount")),
		"description": sanitizeInput(r.PostForm.Get("description")),
	}
	amount, err := core.ParseAmount(form["amount"])
	if err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "add_expense.html",
			pageData{Form: form, Today: time.Now().Format(dateLayout)},
			flashMessage{Category: flashDanger, Message: "Invalid amount."})
		return
	}
	e := core.Expense{
		UserID:      rc.UserID,
		Date:        form["date"],
		Category:    form["category"],
		Amount:      amount,
		Description: form["description"],
	}
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	if _, err := s.ledger.AddExpense(r.Context(), st, e); err != nil {
		s.serverError(w, r, "Failed to add expense", err)
		return
	}

	ledgerWrites.WithLabelValues("expense").Inc()
	setFlash(w, r, flashSuccess, "Expense added successfully!")
	http.Redirect(w, r, "/summary", http.StatusSeeOther)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	rc := requestContextFrom(r.Context())
	st, ok := s.store(w, r)
	if !ok {
		return
	}

	b, err := s.ledger.GetBudget(r.Context(), st, rc.UserID)
	if err != nil {
		s.serverError(w, r, "Failed to load budget", err)
		return
	}
	s.render(w, r, http.StatusOK, "budget.html", pageData{Budget: b})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	rc := requestContextFrom(r.Context())
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	raw := sanitizeInput(r.PostForm.Get("amount"))

	amount, err := core.ParseAmount(raw)
	if err != nil {
		current, gerr := s.ledger.GetBudget(r.Context(), st, rc.UserID)
		if gerr != nil {
			s.serverError(w, r, "Failed to load budget", gerr)
			return
		}
		s.render(w, r, http.StatusUnprocessableEntity, "budget.html",
			pageData{Budget: current, Form: map[string]string{"amount": raw}},
			flashMessage{Category: flashDanger, Message: "Invalid amount."})
		return
	}

	if _, err := s.ledger.SetBudget(r.Context(), st, rc.UserID, amount); err != nil {
		s.serverError(w, r, "Failed to set budget", err)
		return
	}

	ledgerWrites.WithLabelValues("budget").Inc()
	setFlash(w, r, flashSuccess, "Budget updated successfully!")
	http.Redirect(w, r, "/budget", http.StatusSeeOther)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rc := requestContextFrom(r.Context())
	st, ok := s.store(w, r)
	if !ok {
		return
	}

	summary, err := s.ledger.Summary(r.Context(), st, rc.UserID)
	if err != nil {
		s.serverError(w, r, "Failed to build summary", err)
		return
	}

	data := pageData{Summary: &summary, Budget: summary.Budget}
	if rem, ok := summary.Remaining(); ok {
		data.Remaining = &rem
	}
	s.render(w, r, http.StatusOK, "summary.html", data)
}
