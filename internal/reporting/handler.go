package reporting

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/retailpro/retailpro/internal/access"
	"github.com/retailpro/retailpro/internal/inventory"
	"github.com/retailpro/retailpro/internal/sales"
	"github.com/retailpro/retailpro/internal/shared"
	"github.com/retailpro/retailpro/internal/view"
)

// Handler serves the owner dashboard and report pages.
type Handler struct {
	logger      *slog.Logger
	reports     *Service
	inventory   *inventory.Service
	sales       *sales.Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, reports *Service, inv *inventory.Service, sal *sales.Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		reports:     reports,
		inventory:   inv,
		sales:       sal,
		templates:   templates,
		csrfManager: csrf,
	}
}

// MountRoutes registers the dashboard and report pages; the owner guard is
// applied by the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.showDashboard)
	r.Get("/reports", h.showReports)
}

type dashboardPageData struct {
	Summary     inventory.Summary
	Overview    Overview
	TopProducts []TopProduct
	RecentSales []sales.Transaction
	LowStock    []inventory.Item
	Trend       []MonthlySummary
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	ownerID := principal.UserID

	var data dashboardPageData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		summary, err := h.inventory.Summary(ctx, ownerID)
		if err == nil {
			data.Summary = summary
		}
		return err
	})
	g.Go(func() error {
		overview, err := h.reports.Overview(ctx, ownerID, PeriodMonth)
		if err == nil {
			data.Overview = overview
		}
		return err
	})
	g.Go(func() error {
		products, err := h.reports.TopProducts(ctx, ownerID, PeriodMonth)
		if err == nil {
			data.TopProducts = products
		}
		return err
	})
	g.Go(func() error {
		recent, err := h.sales.Recent(ctx, ownerID, time.Time{}, 5)
		if err == nil {
			data.RecentSales = recent
		}
		return err
	})
	g.Go(func() error {
		low, err := h.inventory.LowStock(ctx, ownerID, 5)
		if err == nil {
			data.LowStock = low
		}
		return err
	})
	g.Go(func() error {
		trend, err := h.reports.MonthlyTrend(ctx, ownerID, 6)
		if err == nil {
			data.Trend = trend
		}
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/dashboard.html", "Dashboard", data)
}

type reportsPageData struct {
	Period      Period
	Overview    Overview
	TopProducts []TopProduct
	RecentSales []sales.Transaction
}

func (h *Handler) showReports(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	ownerID := principal.UserID

	period := Period(r.URL.Query().Get("period"))
	if !period.Valid() {
		period = PeriodMonth
	}

	data := reportsPageData{Period: period}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		overview, err := h.reports.Overview(ctx, ownerID, period)
		if err == nil {
			data.Overview = overview
		}
		return err
	})
	g.Go(func() error {
		products, err := h.reports.TopProducts(ctx, ownerID, period)
		if err == nil {
			data.TopProducts = products
		}
		return err
	})
	g.Go(func() error {
		recent, err := h.sales.Recent(ctx, ownerID, period.Start(time.Now()), 10)
		if err == nil {
			data.RecentSales = recent
		}
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load reports", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/reports.html", "Reports", data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	principal := access.PrincipalFromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	shopName := ""
	if principal != nil && principal.Profile != nil {
		shopName = principal.Profile.ShopName
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		ShopName:    shopName,
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render report page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
