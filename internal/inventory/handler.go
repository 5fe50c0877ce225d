package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retailpro/retailpro/internal/access"
	"github.com/retailpro/retailpro/internal/shared"
	"github.com/retailpro/retailpro/internal/view"
)

// Handler serves the owner inventory pages.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		templates:   templates,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// MountRoutes registers owner inventory routes; the owner guard is applied by
// the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showList)
	r.Get("/add", h.showAddForm)
	r.Post("/add", h.handleCreate)
	r.Get("/{id}/edit", h.showEditForm)
	r.Post("/{id}/edit", h.handleUpdate)
	r.Post("/{id}/delete", h.handleDelete)
	r.Get("/categories", h.showCategories)
	r.Post("/categories", h.handleCreateCategory)
	r.Post("/categories/{id}/delete", h.handleDeleteCategory)
}

type itemForm struct {
	Name            string `validate:"required"`
	Description     string
	SKU             string
	Barcode         string
	CategoryID      string
	CostPrice       string `validate:"required"`
	SellingPrice    string `validate:"required"`
	QuantityInStock string `validate:"required"`
	MinStockLevel   string
	ImageURL        string
}

const listPerPage = 25

type listPageData struct {
	Items      []Item
	Categories []Category
	Summary    Summary
	Filter     Filter
	Pagination shared.Pagination
}

type itemPageData struct {
	Form       itemForm
	ItemID     int64
	Categories []Category
	Errors     map[string]string
}

type categoriesPageData struct {
	Categories []Category
	Errors     map[string]string
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	filter := filterFromQuery(r)

	items, err := h.service.List(r.Context(), principal.UserID, filter)
	if err != nil {
		h.logger.Error("list inventory", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	categories, err := h.service.Categories(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
	}
	summary, err := h.service.Summary(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("inventory summary", slog.Any("error", err))
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := shared.NewPagination(page, listPerPage, len(items))
	items = pageSlice(items, pagination)

	h.render(w, r, "pages/inventory_list.html", "Inventory", listPageData{
		Items:      items,
		Categories: categories,
		Summary:    summary,
		Filter:     filter,
		Pagination: pagination,
	})
}

func (h *Handler) showAddForm(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	categories, err := h.service.Categories(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
	}
	h.render(w, r, "pages/inventory_form.html", "Add Item", itemPageData{
		Form:       itemForm{MinStockLevel: "5"},
		Categories: categories,
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	form, input, formErrors := h.bindItemForm(r)
	if len(formErrors) == 0 {
		if _, err := h.service.Create(r.Context(), principal.UserID, input); err != nil {
			h.collectItemError(err, formErrors)
		}
	}
	if len(formErrors) > 0 {
		categories, _ := h.service.Categories(r.Context(), principal.UserID)
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "pages/inventory_form.html", "Add Item", itemPageData{
			Form:       form,
			Categories: categories,
			Errors:     formErrors,
		})
		return
	}
	h.flashAndRedirect(w, r, "Item added", "/inventory")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	item, err := h.service.Get(r.Context(), principal.UserID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load item", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	categories, err := h.service.Categories(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
	}
	h.render(w, r, "pages/inventory_form.html", "Edit Item", itemPageData{
		Form:       formFromItem(item),
		ItemID:     item.ID,
		Categories: categories,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form, input, formErrors := h.bindItemForm(r)
	if len(formErrors) == 0 {
		if err := h.service.Update(r.Context(), principal.UserID, id, input); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			h.collectItemError(err, formErrors)
		}
	}
	if len(formErrors) > 0 {
		categories, _ := h.service.Categories(r.Context(), principal.UserID)
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "pages/inventory_form.html", "Edit Item", itemPageData{
			Form:       form,
			ItemID:     id,
			Categories: categories,
			Errors:     formErrors,
		})
		return
	}
	h.flashAndRedirect(w, r, "Item updated", "/inventory")
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.Delete(r.Context(), principal.UserID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("delete item", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.flashAndRedirect(w, r, "Item deleted", "/inventory")
}

func (h *Handler) showCategories(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	categories, err := h.service.Categories(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/categories.html", "Categories", categoriesPageData{Categories: categories})
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	name := r.PostFormValue("name")
	if _, err := h.service.CreateCategory(r.Context(), principal.UserID, name); err != nil {
		if errors.Is(err, ErrNameRequired) {
			categories, _ := h.service.Categories(r.Context(), principal.UserID)
			w.WriteHeader(http.StatusBadRequest)
			h.render(w, r, "pages/categories.html", "Categories", categoriesPageData{
				Categories: categories,
				Errors:     map[string]string{"Name": "Category name is required"},
			})
			return
		}
		h.logger.Error("create category", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.flashAndRedirect(w, r, "Category added", "/inventory/categories")
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), principal.UserID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("delete category", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.flashAndRedirect(w, r, "Category deleted", "/inventory/categories")
}

func (h *Handler) bindItemForm(r *http.Request) (itemForm, ItemInput, map[string]string) {
	formErrors := make(map[string]string)
	if err := r.ParseForm(); err != nil {
		formErrors["general"] = "Invalid form submission"
		return itemForm{}, ItemInput{}, formErrors
	}
	form := itemForm{
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Description:     r.PostFormValue("description"),
		SKU:             strings.TrimSpace(r.PostFormValue("sku")),
		Barcode:         strings.TrimSpace(r.PostFormValue("barcode")),
		CategoryID:      r.PostFormValue("category_id"),
		CostPrice:       r.PostFormValue("cost_price"),
		SellingPrice:    r.PostFormValue("selling_price"),
		QuantityInStock: r.PostFormValue("quantity_in_stock"),
		MinStockLevel:   r.PostFormValue("min_stock_level"),
		ImageURL:        strings.TrimSpace(r.PostFormValue("image_url")),
	}
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = "This field is required"
		}
	}

	input := ItemInput{
		Name:        form.Name,
		Description: form.Description,
		SKU:         form.SKU,
		Barcode:     form.Barcode,
		ImageURL:    form.ImageURL,
	}
	if form.CategoryID != "" {
		if id, err := strconv.ParseInt(form.CategoryID, 10, 64); err == nil {
			input.CategoryID = &id
		} else {
			formErrors["CategoryID"] = "Select a valid category"
		}
	}
	input.CostPrice = parseFloatField(form.CostPrice, "CostPrice", "Cost price must be a number", formErrors)
	input.SellingPrice = parseFloatField(form.SellingPrice, "SellingPrice", "Selling price must be a number", formErrors)
	input.QuantityInStock = parseIntField(form.QuantityInStock, "QuantityInStock", "Quantity must be a whole number", formErrors)
	if form.MinStockLevel != "" {
		input.MinStockLevel = parseIntField(form.MinStockLevel, "MinStockLevel", "Minimum level must be a whole number", formErrors)
	}
	return form, input, formErrors
}

func (h *Handler) collectItemError(err error, formErrors map[string]string) {
	switch {
	case errors.Is(err, ErrNameRequired):
		formErrors["Name"] = "Name is required"
	case errors.Is(err, ErrNegativePrice):
		formErrors["CostPrice"] = "Prices must be zero or more"
	case errors.Is(err, ErrNegativeQuantity):
		formErrors["QuantityInStock"] = "Quantities must be zero or more"
	default:
		h.logger.Error("save item", slog.Any("error", err))
		formErrors["general"] = "Could not save the item, please try again"
	}
}

func (h *Handler) flashAndRedirect(w http.ResponseWriter, r *http.Request, message, target string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
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
		h.logger.Error("render inventory page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func filterFromQuery(r *http.Request) Filter {
	filter := Filter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Stock:  StockFilter(r.URL.Query().Get("stock")),
	}
	if filter.Stock != StockFilterLow && filter.Stock != StockFilterOut {
		filter.Stock = StockFilterNone
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CategoryID = id
		}
	}
	return filter
}

func formFromItem(item *Item) itemForm {
	form := itemForm{
		Name:            item.Name,
		Description:     item.Description,
		SKU:             item.SKU,
		Barcode:         item.Barcode,
		CostPrice:       strconv.FormatFloat(item.CostPrice, 'f', 2, 64),
		SellingPrice:    strconv.FormatFloat(item.SellingPrice, 'f', 2, 64),
		QuantityInStock: strconv.Itoa(item.QuantityInStock),
		MinStockLevel:   strconv.Itoa(item.MinStockLevel),
		ImageURL:        item.ImageURL,
	}
	if item.CategoryID != nil {
		form.CategoryID = strconv.FormatInt(*item.CategoryID, 10)
	}
	return form
}

func pageSlice(items []Item, p shared.Pagination) []Item {
	start, end := p.Window(len(items))
	return items[start:end]
}

func parseFloatField(raw, field, msg string, formErrors map[string]string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		formErrors[field] = msg
		return 0
	}
	return v
}

func parseIntField(raw, field, msg string, formErrors map[string]string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		formErrors[field] = msg
		return 0
	}
	return v
}
