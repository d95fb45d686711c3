package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/export"
)

// handleDashboard renders the full dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("page not found").Write(w)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	c := s.controllerFor(r)
	view, err := s.buildDashboardView(r, c, nil, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "dashboard.html", view)
}

// handleDashboardAction routes the HTMX sub-actions under /dashboard/.
// Every action mutates the session's controller and re-renders the
// table partial, except export which streams a CSV.
func (s *Server) handleDashboardAction(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/dashboard/")
	c := s.controllerFor(r)

	if action == "export" {
		s.handleExport(w, r, c)
		return
	}

	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("invalid form data").Write(w)
		return
	}

	var (
		form      *core.TransactionForm
		fieldErrs core.FieldErrors
		builder   = NewHTMXResponse()
	)

	switch action {
	case "filters":
		c.SetFilters(dashboard.FilterInput{
			Search:    sanitizeInput(r.PostFormValue("search")),
			Status:    r.PostFormValue("status"),
			AmountMin: r.PostFormValue("amount_min"),
			AmountMax: r.PostFormValue("amount_max"),
			DateMin:   r.PostFormValue("date_min"),
			DateMax:   r.PostFormValue("date_max"),
		})
	case "filters/reset":
		c.ResetFilters()
	case "sort":
		c.SortBy(r.PostFormValue("column"))
	case "page":
		n, err := strconv.Atoi(r.PostFormValue("page"))
		if err != nil {
			BadRequestError("invalid page number").Write(w)
			return
		}
		c.SetPage(n)
	case "page-size":
		size, err := strconv.Atoi(r.PostFormValue("size"))
		if err != nil {
			BadRequestError("invalid page size").Write(w)
			return
		}
		c.SetPageSize(size)
	case "select/toggle":
		id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
		if err != nil {
			BadRequestError("invalid transaction id").Write(w)
			return
		}
		c.ToggleSelect(id)
	case "select/page":
		if err := c.SelectCurrentPage(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Page selection failed", "error", err)
			InternalServerError("could not select page").Write(w)
			return
		}
	case "select/all":
		c.SelectAllMatchingFilter()
	case "select/clear":
		c.ClearSelection()
	case "new":
		c.Create()
	case "edit":
		id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
		if err != nil {
			BadRequestError("invalid transaction id").Write(w)
			return
		}
		if err := c.Edit(r.Context(), id); err != nil {
			slog.WarnContext(r.Context(), "Edit load failed", "id", id, "error", err)
			NotFoundError("transaction not found").Write(w)
			return
		}
	case "edit/cancel":
		c.CancelEdit()
	case "save":
		f := core.TransactionForm{
			Title:  sanitizeInput(r.PostFormValue("title")),
			Amount: r.PostFormValue("amount"),
			Status: r.PostFormValue("status"),
			Date:   r.PostFormValue("date"),
		}
		creating := c.Editing().ID == 0
		fe, err := c.Save(r.Context(), f)
		if err != nil {
			slog.ErrorContext(r.Context(), "Save failed", "error", err)
			InternalServerError("could not save transaction").Write(w)
			return
		}
		if !fe.Empty() {
			form = &f
			fieldErrs = fe
			builder.Status(http.StatusUnprocessableEntity)
		} else {
			saved := c.Editing()
			if creating {
				s.publishEvent(r.Context(), amqp.ActionCreated, saved.ID)
				builder.TriggerTransactionsChanged(amqp.ActionCreated, 1).
					TriggerSuccessNotification("Transaction created.")
			} else {
				s.publishEvent(r.Context(), amqp.ActionUpdated, saved.ID)
				builder.TriggerTransactionsChanged(amqp.ActionUpdated, 1).
					TriggerSuccessNotification("Transaction saved.")
			}
		}
	case "delete/confirm":
		c.ConfirmDelete()
	case "delete/cancel":
		c.CancelDelete()
	case "delete":
		ids, err := c.DeleteSelected(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Bulk delete failed", "error", err)
			InternalServerError("could not delete transactions").Write(w)
			return
		}
		if len(ids) > 0 {
			s.publishEvent(r.Context(), amqp.ActionDeleted, ids...)
			builder.TriggerTransactionsChanged(amqp.ActionDeleted, len(ids)).
				TriggerSuccessNotification(strconv.Itoa(len(ids)) + " transaction(s) deleted.")
		}
	default:
		NotFoundError("unknown action").Write(w)
		return
	}

	view, err := s.buildDashboardView(r, c, form, fieldErrs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard render failed", "action", action, "error", err)
		InternalServerError("could not render dashboard").Write(w)
		return
	}
	builder.Header("Content-Type", "text/html; charset=utf-8").Write(w)
	s.render(w, r, "dashboard_table.html", view)
}

// handleExport streams the resolved selection as a CSV download. With
// nothing selected it exports the whole filtered set.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, c *dashboard.Controller) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	rows, err := c.ResolveForExport(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.CSVFilename+`"`)
	if err := export.WriteCSV(w, rows); err != nil {
		slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
	}
	slog.InfoContext(r.Context(), "Transactions exported", "count", len(rows))
}
