package inventory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retailpro/retailpro/internal/access"
	"github.com/retailpro/retailpro/internal/shared"
	"github.com/retailpro/retailpro/internal/view"
)

// ClientHandler serves the read-only catalog pages for client accounts.
// Every page renders the price-redacted projection; no price ever reaches
// these templates.
type ClientHandler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *ClientHandler {
	return &ClientHandler{
		logger:      logger,
		service:     service,
		templates:   templates,
		csrfManager: csrf,
	}
}

// MountRoutes registers client routes; the client guard is applied by the
// router.
func (h *ClientHandler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.showDashboard)
	r.Get("/inventory", h.showInventory)
}

type clientDashboardData struct {
	TotalItems int
	InStock    int
	LowStock   int
	OutOfStock int
	Items      []ClientItem
}

type clientInventoryData struct {
	Items  []ClientItem
	Filter Filter
}

func (h *ClientHandler) showDashboard(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListClient(r.Context(), Filter{})
	if err != nil {
		h.logger.Error("client dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	data := clientDashboardData{TotalItems: len(items)}
	for _, item := range items {
		switch item.StockStatus() {
		case StockStatusOut:
			data.OutOfStock++
		case StockStatusLow:
			data.LowStock++
		default:
			data.InStock++
		}
	}
	if len(items) > 8 {
		items = items[:8]
	}
	data.Items = items
	h.render(w, r, "pages/client_dashboard.html", "Dashboard", data)
}

func (h *ClientHandler) showInventory(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	items, err := h.service.ListClient(r.Context(), filter)
	if err != nil {
		h.logger.Error("client inventory", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/client_inventory.html", "Inventory", clientInventoryData{
		Items:  items,
		Filter: filter,
	})
}

func (h *ClientHandler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
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
		h.logger.Error("render client page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
