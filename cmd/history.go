package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// reportView is the JSON shape of a stored report.
type reportView struct {
	ID              string             `json:"id"`
	Sequence        int                `json:"sequence"`
	Link            string             `json:"link"`
	SourceType      models.RefType     `json:"source_type"`
	SourceID        string             `json:"source_id"`
	TrackCount      int                `json:"track_count"`
	MatchedCount    int                `json:"matched_count"`
	MatchPercentage float64            `json:"match_percentage"`
	CreatedAt       time.Time          `json:"created_at"`
	Rows            []models.ResultRow `json:"rows,omitempty"`
}

func newReportView(r *models.Report) reportView {
	return reportView{
		ID:              r.ID(),
		Sequence:        r.Sequence(),
		Link:            r.Link(),
		SourceType:      r.SourceType(),
		SourceID:        r.SourceID(),
		TrackCount:      r.TrackCount(),
		MatchedCount:    r.MatchedCount(),
		MatchPercentage: r.MatchPercentage(),
		CreatedAt:       r.CreatedAt(),
		Rows:            r.Rows(),
	}
}

// withReports opens the history database for the duration of fn.
func (r *Runner) withReports(fn func(*repositories.ReportRepository) error) error {
	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(repositories.NewReportRepository(db))
}

// findReport resolves a report by sequence number ("3" or "#3") or by ID.
func findReport(repo *repositories.ReportRepository, ident string) (*models.Report, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return nil, fmt.Errorf("%w: --id", shared.ErrMissingArgument)
	}
	if seq, err := strconv.Atoi(strings.TrimPrefix(ident, "#")); err == nil {
		return repo.GetBySequence(seq)
	}
	return repo.Get(ident)
}

// HistoryList prints saved enrichment runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	return r.withReports(func(repo *repositories.ReportRepository) error {
		criteria := map[string]any{"limit": cmd.Int("limit")}
		if source := cmd.String("source"); source != "" {
			criteria["source_type"] = source
		}

		reports, err := repo.List(criteria)
		if err != nil {
			return err
		}

		styles := ui.Styles()
		if cmd.Bool("json") {
			views := make([]reportView, len(reports))
			for i, rep := range reports {
				views[i] = newReportView(rep)
			}
			return r.writeJSON(views, cmd.Bool("pretty"))
		}

		if len(reports) == 0 {
			return r.writePlain("%s\n", styles.Help("No saved reports. Run 'setlist enrich --save' to keep one."))
		}

		rows := make([][]string, len(reports))
		for i, rep := range reports {
			rows[i] = []string{
				fmt.Sprintf("#%d", rep.Sequence()),
				string(rep.SourceType()),
				rep.SourceID(),
				strconv.Itoa(rep.TrackCount()),
				fmt.Sprintf("%d (%.0f%%)", rep.MatchedCount(), rep.MatchPercentage()),
				rep.CreatedAt().Local().Format("2006-01-02 15:04"),
			}
		}
		ui.RenderTable(r.output, []string{"#", "Type", "Source", "Tracks", "Matched", "Created"}, rows)
		return nil
	})
}

// HistoryShow prints a saved report with its rows.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	return r.withReports(func(repo *repositories.ReportRepository) error {
		report, err := findReport(repo, cmd.String("id"))
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(newReportView(report), cmd.Bool("pretty"))
		}

		styles := ui.Styles()
		r.writePlainHeader(styles.Title(fmt.Sprintf("Report #%d", report.Sequence())))
		ui.RenderKeyValues(r.output, [][]string{
			{"ID", report.ID()},
			{"Link", report.Link()},
			{"Source", fmt.Sprintf("%s:%s", report.SourceType(), report.SourceID())},
			{"Matched", styles.Rate(report.MatchPercentage(), fmt.Sprintf("%d/%d (%.1f%%)", report.MatchedCount(), report.TrackCount(), report.MatchPercentage()))},
			{"Created", report.CreatedAt().Local().Format(time.RFC1123)},
		})

		rows := make([][]string, len(report.Rows()))
		for i, row := range report.Rows() {
			rows[i] = row.Record()
		}
		ui.RenderTable(r.output, models.ReportHeaders, rows)
		return nil
	})
}

// HistoryExport writes a saved report to a file in any supported format.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	return r.withReports(func(repo *repositories.ReportRepository) error {
		report, err := findReport(repo, cmd.String("id"))
		if err != nil {
			return err
		}

		format := cmd.String("format")
		path := cmd.String("output")
		if path == "-" {
			return formatter.ExportTo(r.output, report.Rows(), format)
		}
		if path == "" {
			path = fmt.Sprintf("setlist_%d%s", report.Sequence(), formatter.Extension(format))
		}

		written, err := formatter.WriteReport(report.Rows(), format, path)
		if err != nil {
			return err
		}
		r.logger.Info("report exported", "sequence", report.Sequence(), "path", written)
		return r.writePlain("%s Report #%d exported to %s\n", ui.Styles().OK("✓"), report.Sequence(), written)
	})
}

// HistoryRefresh enriches the link of a saved report again and replaces its rows.
//
// An interrupted run leaves the stored report untouched.
func (r *Runner) HistoryRefresh(ctx context.Context, cmd *cli.Command) error {
	return r.withReports(func(repo *repositories.ReportRepository) error {
		report, err := findReport(repo, cmd.String("id"))
		if err != nil {
			return err
		}

		cfg := r.config.Enrich
		if err := r.config.Validate(); err != nil {
			return err
		}

		ref := models.Reference{Type: report.SourceType(), ID: report.SourceID()}
		logger := shared.WithLogger(r.logger, "ref", ref.String(), "report", report.Sequence())
		result, err := r.runPipeline(ctx, ref, cfg, logger, !cmd.Bool("json"))
		if err != nil {
			return err
		}

		before := report.MatchedCount()
		report.SetRows(result.Rows)
		if err := repo.Update(report); err != nil {
			return err
		}
		logger.Info("report refreshed", "matched_before", before, "matched_after", report.MatchedCount())

		if cmd.Bool("json") {
			return r.writeJSON(newReportView(report), cmd.Bool("pretty"))
		}
		return r.writePlain("%s Report #%d refreshed: %d/%d matched (was %d)\n",
			ui.Styles().OK("✓"), report.Sequence(), report.MatchedCount(), report.TrackCount(), before)
	})
}

// HistoryDelete removes a saved report from the history.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	return r.withReports(func(repo *repositories.ReportRepository) error {
		report, err := findReport(repo, cmd.String("id"))
		if err != nil {
			return err
		}
		if err := repo.Delete(report.ID()); err != nil {
			return err
		}
		return r.writePlain("%s Report #%d deleted\n", ui.Styles().OK("✓"), report.Sequence())
	})
}
