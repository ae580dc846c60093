package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/stridelog/stridelog/internal/omit"
	"github.com/stridelog/stridelog/server/store"
)

type RunsVars struct {
	Club     store.Club
	Runs     []Run
	Shoes    []Shoe
	RunTypes []store.RunType
	Error    string
}

func (h *handler) Runs(w http.ResponseWriter, r *http.Request) {
	h.renderRuns(w, r, "")
}

func (h *handler) renderRuns(w http.ResponseWriter, r *http.Request, errorMessage string) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	runs, err := h.DB.GetMemberRuns(ctx, cc.Club.ID, cc.Session.User.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get runs", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	shoes, err := h.DB.GetShoes(ctx, cc.Session.User.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get shoes", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vars := RunsVars{
		Club:     cc.Club,
		RunTypes: store.RunTypes,
		Error:    errorMessage,
	}
	for _, run := range runs {
		vars.Runs = append(vars.Runs, newRun(run, shoes))
	}
	for _, shoe := range shoes {
		if shoe.Active {
			vars.Shoes = append(vars.Shoes, newShoe(shoe))
		}
	}

	if err = h.Templates().ExecuteTemplate(w, "runs.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render runs template", slog.Any("err", err))
	}
}

func (h *handler) AddRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	miles, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue("miles")), 64)
	run := store.Run{
		ID:       newID(),
		UserID:   cc.Session.User.ID,
		ClubID:   cc.Club.ID,
		Date:     r.FormValue("date"),
		Miles:    miles,
		Type:     store.RunType(r.FormValue("type")),
		RaceName: r.FormValue("race_name"),
		Notes:    r.FormValue("notes"),
		ShoeID:   r.FormValue("shoe_id"),
	}

	if _, err := h.DB.AddRun(ctx, run); err != nil {
		if store.IsValidation(err) {
			h.renderRuns(w, r, err.Error())
			return
		}
		slog.ErrorContext(ctx, "failed to add run", slog.Any("err", err))
		http.Error(w, "Failed to add run", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/runs", http.StatusFound)
}

type RunVars struct {
	Club     store.Club
	Run      Run
	Shoes    []Shoe
	RunTypes []store.RunType
	Error    string
}

func (h *handler) Run(w http.ResponseWriter, r *http.Request) {
	h.renderRun(w, r, "")
}

func (h *handler) renderRun(w http.ResponseWriter, r *http.Request, errorMessage string) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	run, ok := h.ownRun(w, r, cc, r.PathValue("run_id"))
	if !ok {
		return
	}

	shoes, err := h.DB.GetShoes(ctx, run.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get shoes", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vars := RunVars{
		Club:     cc.Club,
		Run:      newRun(*run, shoes),
		RunTypes: store.RunTypes,
		Error:    errorMessage,
	}
	for _, shoe := range shoes {
		if shoe.Active || shoe.ID == run.ShoeID {
			vars.Shoes = append(vars.Shoes, newShoe(shoe))
		}
	}

	if err = h.Templates().ExecuteTemplate(w, "run.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render run template", slog.Any("err", err))
	}
}

func (h *handler) UpdateRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	run, ok := h.ownRun(w, r, cc, r.PathValue("run_id"))
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	patch := store.RunPatch{
		Date:     omit.New(r.FormValue("date")),
		Type:     omit.New(store.RunType(r.FormValue("type"))),
		RaceName: omit.New(r.FormValue("race_name")),
		Notes:    omit.New(r.FormValue("notes")),
		ShoeID:   omit.New(r.FormValue("shoe_id")),
	}
	if miles, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("miles")), 64); err == nil {
		patch.Miles = omit.New(miles)
	}

	if _, err := h.DB.UpdateRun(ctx, run.ID, patch); err != nil {
		if store.IsValidation(err) {
			h.renderRun(w, r, err.Error())
			return
		}
		slog.ErrorContext(ctx, "failed to update run", slog.Any("err", err))
		http.Error(w, "Failed to update run", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/runs", http.StatusFound)
}

func (h *handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	run, ok := h.ownRun(w, r, cc, r.PathValue("run_id"))
	if !ok {
		return
	}

	if err := h.DB.DeleteRun(ctx, run.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		slog.ErrorContext(ctx, "failed to delete run", slog.Any("err", err))
		http.Error(w, "Failed to delete run", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/runs", http.StatusFound)
}
