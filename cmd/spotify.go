package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// LinkParse prints the object type and ID of a Spotify link without calling any API.
func (r *Runner) LinkParse(ctx context.Context, cmd *cli.Command) error {
	link := cmd.StringArg("link")
	if link == "" {
		return fmt.Errorf("%w: link", shared.ErrMissingArgument)
	}

	ref, err := services.ParseLink(link)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(ref, false)
	}
	return r.writePlain("%s %s\n", ref.Type, ref.ID)
}

// SpotifyTracks lists the tracks behind a Spotify link.
func (r *Runner) SpotifyTracks(ctx context.Context, cmd *cli.Command) error {
	ref, err := services.ParseLink(cmd.String("link"))
	if err != nil {
		return err
	}

	source, err := r.trackSource(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("fetching tracks", "source", source.Name(), "ref", ref.String())
	tracks, err := source.Tracks(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to fetch tracks: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	rows := make([][]string, len(tracks))
	for i, t := range tracks {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			t.Title,
			t.Artist,
			t.Album,
			shared.FormatDuration(float64(t.DurationMS)),
		}
	}
	ui.RenderTable(r.output, []string{"#", "Title", "Artist", "Album", "Duration"}, rows)
	return r.writePlainln("%d tracks", len(tracks))
}
