package http

import (
	"html/template"
	"net/http"
	"strings"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/dashboard"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"errmsg": errorMessage,
	}
}

// errorMessage maps a validation rule to its user-facing message.
func errorMessage(field, rule string) string {
	switch rule {
	case core.RuleRequired:
		return "This field is required."
	case core.RuleMin:
		return "This value is too short."
	case core.RuleMax:
		return "This value is too long."
	case core.RuleEmail:
		return "Enter a valid email address."
	case core.RuleSame:
		return "The confirmation does not match."
	case core.RuleUnique:
		return "This email is already registered."
	case core.RuleIn:
		return "Choose one of the listed options."
	case core.RuleNumeric:
		return "Enter a valid amount."
	case core.RuleDate:
		return "Enter a valid date."
	case core.RuleImage:
		return "Upload an image file."
	case core.RuleAuth:
		return "These credentials do not match our records."
	default:
		return "Invalid value."
	}
}

type userView struct {
	Name     string
	Email    string
	Username string
	About    string
	Birthday string
	Avatar   string
}

func newUserView(u core.User) userView {
	v := userView{
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
		About:    u.About,
		Avatar:   u.AvatarPath,
	}
	if !u.Birthday.IsEmpty() {
		v.Birthday = u.Birthday.ISO()
	}
	return v
}

type rowView struct {
	ID       int64
	Title    string
	Amount   string
	Status   string
	Date     string
	Selected bool
}

type sortView struct {
	Column     string
	Descending bool
}

type pageView struct {
	Number    int
	Size      int
	PageCount int
	Total     int
	Sizes     []int
	Pages     []int
	HasPrev   bool
	HasNext   bool
	PrevPage  int
	NextPage  int
}

type editView struct {
	ID     int64
	Title  string
	Amount string
	Status string
	Date   string
}

// dashboardView is everything the dashboard templates need. The same
// struct backs the full page and the HTMX partial.
type dashboardView struct {
	User     userView
	Filters  dashboard.FilterInput
	Sort     sortView
	Page     pageView
	Rows     []rowView
	Statuses []core.Status

	SelectedCount  int
	SelectionAll   bool
	SelectionEmpty bool

	State   string
	Editing editView
	Errors  core.FieldErrors
}

func viewStateName(st dashboard.ViewState) string {
	switch st {
	case dashboard.Editing:
		return "editing"
	case dashboard.ConfirmingDelete:
		return "confirming-delete"
	default:
		return "viewing"
	}
}

// buildDashboardView assembles the view model for the current session
// state. When form is non-nil the edit modal re-renders the submitted
// values instead of the stored record.
func (s *Server) buildDashboardView(r *http.Request, c *dashboard.Controller, form *core.TransactionForm, fieldErrs core.FieldErrors) (dashboardView, error) {
	ctx := r.Context()
	page, err := c.Rows(ctx)
	if err != nil {
		return dashboardView{}, err
	}

	v := dashboardView{
		Filters:        c.Filters(),
		Statuses:       core.Statuses,
		SelectionAll:   c.SelectionAll(),
		SelectionEmpty: c.SelectionEmpty(),
		State:          viewStateName(c.State()),
		Errors:         fieldErrs,
	}
	if u, ok := auth.CurrentUser(ctx); ok {
		v.User = newUserView(u)
	}

	sort := c.Sort()
	v.Sort = sortView{Column: string(sort.Column), Descending: sort.Descending}

	v.Page = pageView{
		Number:    page.Number,
		Size:      page.Size,
		PageCount: page.PageCount,
		Total:     page.Total,
		Sizes:     dashboard.PageSizes,
		HasPrev:   page.Number > 1,
		HasNext:   page.Number < page.PageCount,
		PrevPage:  page.Number - 1,
		NextPage:  page.Number + 1,
	}
	for p := 1; p <= page.PageCount; p++ {
		v.Page.Pages = append(v.Page.Pages, p)
	}

	v.Rows = make([]rowView, len(page.Rows))
	for i, t := range page.Rows {
		v.Rows[i] = rowView{
			ID:       t.ID,
			Title:    t.Title,
			Amount:   t.Amount.Decimal(),
			Status:   string(t.Status),
			Date:     t.Date.ISO(),
			Selected: c.IsSelected(t.ID),
		}
	}

	if !v.SelectionEmpty {
		selected, err := c.ResolveSelection(ctx)
		if err != nil {
			return dashboardView{}, err
		}
		v.SelectedCount = len(selected)
	}

	if v.State == "editing" {
		if form != nil {
			v.Editing = editView{
				ID:     c.Editing().ID,
				Title:  form.Title,
				Amount: form.Amount,
				Status: strings.TrimSpace(form.Status),
				Date:   form.Date,
			}
		} else {
			t := c.Editing()
			v.Editing = editView{
				ID:     t.ID,
				Title:  t.Title,
				Amount: t.Amount.Decimal(),
				Status: string(t.Status),
				Date:   t.Date.ISO(),
			}
			if t.ID == 0 && t.Amount.Cents == 0 {
				v.Editing.Amount = ""
			}
		}
	}

	return v, nil
}

type authView struct {
	Email  string
	Name   string
	Next   string
	Errors core.FieldErrors
}

type profileView struct {
	User   userView
	Errors core.FieldErrors
	Saved  bool
}
