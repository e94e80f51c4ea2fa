package overview

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/http/render"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/notify"
	"github.com/MrJamesThe3rd/khata/internal/report"
)

// Handler serves the dashboard summary, pending reminders and notification
// settings.
type Handler struct {
	ledger    *ledger.Service
	scheduler *notify.Scheduler
}

func NewHandler(l *ledger.Service, scheduler *notify.Scheduler) *Handler {
	return &Handler{ledger: l, scheduler: scheduler}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/reminders", h.reminders)
	r.Get("/notifications/settings", h.settings)
	r.Put("/notifications/settings", h.updateSettings)
}

type balanceResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	OutstandingTotal decimal.Decimal `json:"outstandingTotal"`
}

type activityResponse struct {
	Kind       ledger.Kind       `json:"kind"`
	EntityID   string            `json:"entityId"`
	EntityName string            `json:"entityName"`
	ItemID     string            `json:"itemId"`
	Amount     decimal.Decimal   `json:"amount"`
	Date       time.Time         `json:"date"`
	Status     ledger.ItemStatus `json:"status"`
}

type summaryResponse struct {
	Customers          int                `json:"customers"`
	Creditors          int                `json:"creditors"`
	UnpaidCustomers    int                `json:"unpaidCustomers"`
	UnpaidCreditors    int                `json:"unpaidCreditors"`
	TotalReceivables   decimal.Decimal    `json:"totalReceivables"`
	TotalPayables      decimal.Decimal    `json:"totalPayables"`
	NetPosition        decimal.Decimal    `json:"netPosition"`
	OverdueReceivables []balanceResponse  `json:"overdueReceivables"`
	OverduePayables    []balanceResponse  `json:"overduePayables"`
	Recent             []activityResponse `json:"recent"`
}

type settingsDTO struct {
	Enabled          bool `json:"enabled"`
	ReminderDays     int  `json:"reminderDays"`
	OverdueReminders bool `json:"overdueReminders"`
	WeeklyReports    bool `json:"weeklyReports"`
}

func toBalances(entities []ledger.Entity) []balanceResponse {
	out := make([]balanceResponse, len(entities))
	for i, e := range entities {
		out[i] = balanceResponse{ID: e.ID, Name: e.Name, OutstandingTotal: e.OutstandingTotal}
	}

	return out
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	customers, err := h.ledger.Collection(r.Context(), ledger.KindReceivable)
	if err != nil {
		render.Error(w, err)
		return
	}

	creditors, err := h.ledger.Collection(r.Context(), ledger.KindPayable)
	if err != nil {
		render.Error(w, err)
		return
	}

	s := report.Summarise(customers, creditors, h.ledger.Engine().Now())

	resp := summaryResponse{
		Customers:          s.Customers,
		Creditors:          s.Creditors,
		UnpaidCustomers:    s.UnpaidCustomers,
		UnpaidCreditors:    s.UnpaidCreditors,
		TotalReceivables:   s.TotalReceivables,
		TotalPayables:      s.TotalPayables,
		NetPosition:        s.NetPosition,
		OverdueReceivables: toBalances(s.OverdueReceivables),
		OverduePayables:    toBalances(s.OverduePayables),
		Recent:             make([]activityResponse, len(s.Recent)),
	}

	for i, a := range s.Recent {
		resp.Recent[i] = activityResponse{
			Kind:       a.Kind,
			EntityID:   a.EntityID,
			EntityName: a.EntityName,
			ItemID:     a.Item.ID,
			Amount:     a.Item.Amount,
			Date:       a.Item.Date,
			Status:     a.Item.Status,
		}
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) reminders(w http.ResponseWriter, r *http.Request) {
	pending, err := h.scheduler.Pending(r.Context())
	if err != nil {
		render.Error(w, err)
		return
	}

	if pending == nil {
		pending = []notify.Notification{}
	}

	render.JSON(w, http.StatusOK, pending)
}

func (h *Handler) settings(w http.ResponseWriter, _ *http.Request) {
	s := h.scheduler.Settings()

	render.JSON(w, http.StatusOK, settingsDTO{
		Enabled:          s.Enabled,
		ReminderDays:     s.ReminderDays,
		OverdueReminders: s.OverdueReminders,
		WeeklyReports:    s.WeeklyReports,
	})
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsDTO
	if !render.Decode(w, r, &req) {
		return
	}

	if err := h.scheduler.UpdateSettings(notify.Settings{
		Enabled:          req.Enabled,
		ReminderDays:     req.ReminderDays,
		OverdueReminders: req.OverdueReminders,
		WeeklyReports:    req.WeeklyReports,
	}); err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, req)
}
