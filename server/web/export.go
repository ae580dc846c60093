package web

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stridelog/stridelog/internal/tsync"
	"github.com/stridelog/stridelog/internal/xerrors"
	"github.com/stridelog/stridelog/internal/xquery"
	"github.com/stridelog/stridelog/server/store"
)

const (
	FieldDate       = "date"
	FieldMiles      = "miles"
	FieldType       = "type"
	FieldRaceName   = "race_name"
	FieldNotes      = "notes"
	FieldUserID     = "user_id"
	FieldMemberName = "member_name"
)

var defaultFields = []string{
	FieldDate,
	FieldMiles,
	FieldType,
	FieldMemberName,
}

type ExportVars struct {
	Club    store.Club
	Admin   bool
	Members []Member
	Fields  []string
	Error   string
}

func (h *handler) Export(w http.ResponseWriter, r *http.Request) {
	h.renderExport(w, r, "")
}

func (h *handler) renderExport(w http.ResponseWriter, r *http.Request, errorMessage string) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	vars := ExportVars{
		Club:   cc.Club,
		Admin:  cc.Membership.Admin,
		Fields: []string{FieldDate, FieldMiles, FieldType, FieldRaceName, FieldNotes, FieldUserID, FieldMemberName},
		Error:  errorMessage,
	}
	if cc.Membership.Admin {
		members, err := h.DB.GetMemberships(ctx, cc.Club.ID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to get members", slog.Any("err", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		for _, member := range members {
			vars.Members = append(vars.Members, newMember(member))
		}
	}

	if err := h.Templates().ExecuteTemplate(w, "export.gohtml", vars); err != nil {
		slog.ErrorContext(ctx, "Failed to render export template", slog.Any("err", err))
	}
}

// DoExport streams the club's runs as CSV. Admins may export any subset of
// members, combined into one file or split per member into a zip; regular
// members only ever get their own runs.
func (h *handler) DoExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cc, ok := h.activeClub(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	combineCSVs := xquery.ParseBool(r.Form, "combine_csv", true)
	includedFields := r.Form["included_fields"]
	if len(includedFields) == 0 {
		includedFields = defaultFields
	}

	members, err := h.exportMembers(ctx, cc, r.Form["member_ids"])
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve export members", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if len(members) == 0 {
		h.renderExport(w, r, "No members selected")
		return
	}

	slog.InfoContext(ctx, "Received export request",
		slog.String("club_id", cc.Club.ID),
		slog.Int("members", len(members)),
		slog.Bool("combine_csv", combineCSVs),
		slog.Any("included_fields", includedFields),
	)

	var allRecords []Records
	if combineCSVs {
		memberIDs := make([]string, 0, len(members))
		for _, member := range members {
			memberIDs = append(memberIDs, member.UserID)
		}

		runs, err := h.DB.GetRunsForMembers(ctx, cc.Club.ID, memberIDs)
		if err != nil {
			slog.ErrorContext(ctx, "failed to get runs", slog.Any("err", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		records := [][]string{includedFields}
		records = append(records, getRecords(runs, members, includedFields)...)
		allRecords = append(allRecords, Records{
			name:    exportName(),
			records: records,
		})
	} else {
		var eg tsync.ErrorGroup
		eg.SetLimit(4)
		for _, member := range members {
			eg.Go(func() error {
				runs, err := h.DB.GetMemberRuns(ctx, cc.Club.ID, member.UserID)
				if err != nil {
					return fmt.Errorf("failed to get runs for member %q: %w", member.UserID, err)
				}

				records := [][]string{includedFields}
				records = append(records, getRecords(runs, members, includedFields)...)

				eg.Lock()
				defer eg.Unlock()
				allRecords = append(allRecords, Records{
					name:    fmt.Sprintf("export_%s", cleanFilename(member.DisplayName)),
					records: records,
				})
				return nil
			})
		}
		if err = eg.Wait(); err != nil {
			for _, memberErr := range xerrors.Unwrap(err) {
				slog.ErrorContext(ctx, "failed to collect member runs", slog.Any("err", memberErr))
			}
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	h.exportRecords(ctx, w, allRecords, combineCSVs)
}

// exportMembers resolves which members the requester may export.
func (h *handler) exportMembers(ctx context.Context, cc *clubContext, memberIDs []string) ([]store.Membership, error) {
	if !cc.Membership.Admin {
		return []store.Membership{cc.Membership}, nil
	}

	members, err := h.DB.GetMemberships(ctx, cc.Club.ID)
	if err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return members, nil
	}

	selected := make([]store.Membership, 0, len(memberIDs))
	for _, member := range members {
		for _, id := range memberIDs {
			if member.UserID == id {
				selected = append(selected, member)
				break
			}
		}
	}
	return selected, nil
}

func getRecords(runs []store.Run, members []store.Membership, fields []string) [][]string {
	names := make(map[string]string, len(members))
	for _, member := range members {
		names[member.UserID] = member.DisplayName
	}

	var records [][]string
	for _, run := range runs {
		var record []string
		for _, field := range fields {
			switch field {
			case FieldDate:
				record = append(record, run.Date)
			case FieldMiles:
				record = append(record, strconv.FormatFloat(run.Miles, 'f', 1, 64))
			case FieldType:
				record = append(record, string(run.Type))
			case FieldRaceName:
				record = append(record, run.RaceName)
			case FieldNotes:
				record = append(record, run.Notes)
			case FieldUserID:
				record = append(record, run.UserID)
			case FieldMemberName:
				record = append(record, names[run.UserID])
			}
		}
		records = append(records, record)
	}
	return records
}

type Records struct {
	name    string
	records [][]string
}

func (h *handler) exportRecords(ctx context.Context, w http.ResponseWriter, allRecords []Records, combineCSVs bool) {
	if combineCSVs || len(allRecords) == 1 {
		records := allRecords[0]
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", records.name))
		if err := csv.NewWriter(w).WriteAll(records.records); err != nil {
			slog.ErrorContext(ctx, "Failed to write CSV records", slog.Any("err", err))
			return
		}
		slog.InfoContext(ctx, "Export completed successfully", slog.Int("records", len(records.records)))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.zip", exportName()))
	zw := zip.NewWriter(w)
	for _, records := range allRecords {
		filename := fmt.Sprintf("%s.csv", records.name)
		f, err := zw.Create(filename)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create zip entry", slog.String("filename", filename), slog.Any("err", err))
			return
		}

		if err = csv.NewWriter(f).WriteAll(records.records); err != nil {
			slog.ErrorContext(ctx, "Failed to write CSV records", slog.String("filename", filename), slog.Any("err", err))
			return
		}
	}
	if err := zw.Close(); err != nil {
		slog.ErrorContext(ctx, "Failed to close zip writer", slog.Any("err", err))
		return
	}

	slog.InfoContext(ctx, "Export completed successfully", slog.Int("files", len(allRecords)))
}

func exportName() string {
	return fmt.Sprintf("export_%s", time.Now().Format("20060102_150405"))
}

func cleanFilename(name string) string {
	// Clean the filename to ensure it is safe for use in file systems
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "")
	}
	return strings.ToLower(name)
}
