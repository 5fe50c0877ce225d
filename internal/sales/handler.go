package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retailpro/retailpro/internal/access"
	"github.com/retailpro/retailpro/internal/inventory"
	"github.com/retailpro/retailpro/internal/shared"
	"github.com/retailpro/retailpro/internal/view"
)

// Handler wires the sale-recording pages.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	inventory   *inventory.Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, inv *inventory.Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		inventory:   inv,
		templates:   templates,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// MountRoutes registers sale routes; the owner guard is applied by the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/new", h.showSaleForm)
	r.Post("/new", h.handleRecordSale)
}

type saleForm struct {
	ItemID        string `validate:"required"`
	Quantity      string `validate:"required"`
	UnitPrice     string
	CustomerName  string
	CustomerPhone string
	Notes         string
}

type salePageData struct {
	Form   saleForm
	Items  []inventory.Item
	Errors map[string]string
}

func (h *Handler) showSaleForm(w http.ResponseWriter, r *http.Request) {
	h.renderSaleForm(w, r, salePageData{}, http.StatusOK)
}

func (h *Handler) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	form := saleForm{
		ItemID:        r.PostFormValue("item_id"),
		Quantity:      r.PostFormValue("quantity"),
		UnitPrice:     r.PostFormValue("unit_price"),
		CustomerName:  r.PostFormValue("customer_name"),
		CustomerPhone: r.PostFormValue("customer_phone"),
		Notes:         r.PostFormValue("notes"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	input := SaleInput{
		CustomerName:  form.CustomerName,
		CustomerPhone: form.CustomerPhone,
		Notes:         form.Notes,
	}
	if id, err := strconv.ParseInt(form.ItemID, 10, 64); err == nil {
		input.ItemID = id
	} else if form.ItemID != "" {
		formErrors["ItemID"] = "Select a valid product"
	}
	if qty, err := strconv.Atoi(form.Quantity); err == nil {
		input.Quantity = qty
	} else if form.Quantity != "" {
		formErrors["Quantity"] = "Quantity must be a whole number"
	}
	if form.UnitPrice != "" {
		price, err := strconv.ParseFloat(form.UnitPrice, 64)
		if err != nil {
			formErrors["UnitPrice"] = "Unit price must be a number"
		} else {
			input.UnitPrice = &price
		}
	}

	if len(formErrors) == 0 {
		_, err := h.service.RecordSale(r.Context(), principal.UserID, input)
		var stockErr InsufficientStockError
		switch {
		case err == nil:
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Sale recorded"})
			}
			http.Redirect(w, r, "/reports", http.StatusSeeOther)
			return
		case errors.As(err, &stockErr):
			formErrors["Quantity"] = stockErr.Error()
		case errors.Is(err, ErrInvalidQuantity):
			formErrors["Quantity"] = "Quantity must be a positive number"
		case errors.Is(err, ErrInvalidUnitPrice):
			formErrors["UnitPrice"] = "Unit price must be zero or more"
		case errors.Is(err, shared.ErrNotFound):
			formErrors["ItemID"] = "Product not found"
		default:
			h.logger.Error("record sale", slog.Any("error", err))
			formErrors["general"] = "Could not record the sale, please try again"
		}
	}

	h.renderSaleForm(w, r, salePageData{Form: form, Errors: formErrors}, http.StatusBadRequest)
}

func (h *Handler) renderSaleForm(w http.ResponseWriter, r *http.Request, data salePageData, status int) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	items, err := h.inventory.List(r.Context(), principal.UserID, inventory.Filter{})
	if err != nil {
		h.logger.Error("list items for sale form", slog.Any("error", err))
	}
	data.Items = items

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	viewData := view.TemplateData{
		Title:       "Record Sale",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		ShopName:    principal.Profile.ShopName,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/sale_new.html", viewData); err != nil {
		h.logger.Error("render sale form", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
