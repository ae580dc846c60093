package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/store"
)

type ShoesVars struct {
	Shoes   []Shoe
	Retired []Shoe
	Error   string
}

func (h *handler) Shoes(w http.ResponseWriter, r *http.Request) {
	h.renderShoes(w, r, "")
}

func (h *handler) renderShoes(w http.ResponseWriter, r *http.Request, errorMessage string) {
	ctx := r.Context()
	session := auth.GetSession(r)

	shoes, err := h.DB.GetShoes(ctx, session.User.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get shoes", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vars := ShoesVars{
		Error: errorMessage,
	}
	for _, shoe := range shoes {
		if shoe.Active {
			vars.Shoes = append(vars.Shoes, newShoe(shoe))
		} else {
			vars.Retired = append(vars.Retired, newShoe(shoe))
		}
	}

	if err = h.Templates().ExecuteTemplate(w, "shoes.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render shoes template", slog.Any("err", err))
	}
}

func (h *handler) AddShoe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	milesLimit, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue("miles_limit")), 64)
	shoe := store.Shoe{
		ID:         newID(),
		UserID:     session.User.ID,
		Name:       r.FormValue("name"),
		MilesLimit: milesLimit,
		Active:     true,
	}

	if _, err := h.DB.AddShoe(ctx, shoe); err != nil {
		if store.IsValidation(err) {
			h.renderShoes(w, r, err.Error())
			return
		}
		slog.ErrorContext(ctx, "failed to add shoe", slog.Any("err", err))
		http.Error(w, "Failed to add shoe", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/shoes", http.StatusFound)
}

func (h *handler) UpdateShoe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shoe, ok := h.ownShoe(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.renderShoes(w, r, "Shoe name is required")
		return
	}
	milesLimit, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue("miles_limit")), 64)
	if milesLimit < 0 {
		h.renderShoes(w, r, "Mileage limit must not be negative")
		return
	}

	if err := h.DB.UpdateShoe(ctx, shoe.ID, name, milesLimit); err != nil {
		slog.ErrorContext(ctx, "failed to update shoe", slog.Any("err", err))
		http.Error(w, "Failed to update shoe", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/shoes", http.StatusFound)
}

func (h *handler) SetShoeActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shoe, ok := h.ownShoe(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	active := r.FormValue("active") == "true"

	if err := h.DB.SetShoeActive(ctx, shoe.ID, active); err != nil {
		slog.ErrorContext(ctx, "failed to set shoe active", slog.Any("err", err))
		http.Error(w, "Failed to update shoe", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/shoes", http.StatusFound)
}

func (h *handler) ownShoe(w http.ResponseWriter, r *http.Request) (*store.Shoe, bool) {
	ctx := r.Context()
	session := auth.GetSession(r)

	shoe, err := h.DB.GetShoe(ctx, r.PathValue("shoe_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return nil, false
		}
		slog.ErrorContext(ctx, "failed to get shoe", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	if shoe.UserID != session.User.ID {
		http.Error(w, "You may only modify your own shoes", http.StatusForbidden)
		return nil, false
	}

	return shoe, true
}
