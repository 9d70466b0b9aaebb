package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trackshare/internal/app/tracks"
	"trackshare/internal/app/users"
	"trackshare/internal/config"
	"trackshare/internal/identity"
	"trackshare/internal/store"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
)

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo user and a few tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Database.Driver == store.DriverMemory {
				return errors.New("seeding the memory driver has no lasting effect; set DEMO_DATA=true with serve instead")
			}

			repo, closeRepo, err := openRepository(cmd.Context(), c.cfg.Database)
			if err != nil {
				return err
			}
			defer closeRepo()

			return seedDemoData(cmd.Context(), repo, c.cfg)
		},
	}
}

// seedDemoData creates the demo account and, when no tracks exist yet, a small
// catalogue with a like and a comment. It is safe to run repeatedly.
func seedDemoData(ctx context.Context, repo repository, cfg *config.Config) error {
	tokens := identity.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	userSvc := users.New(repo, tokens)
	trackSvc := tracks.New(repo)

	if _, err := userSvc.Signup(ctx, demoUsername, demoPassword, "demo@example.com"); err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	demo, err := repo.GetUserByUsername(ctx, demoUsername)
	if err != nil {
		return fmt.Errorf("lookup demo user: %w", err)
	}

	existing, err := trackSvc.ListTracks(ctx, "")
	if err != nil {
		return fmt.Errorf("count tracks: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	caller := identity.Authenticated(demo)
	seed := []tracks.TrackInput{
		{Title: "Teardrop", Genre: "Trip Hop", Description: "Massive Attack, Mezzanine", URL: "https://example.com/tracks/teardrop.mp3"},
		{Title: "Roygbiv", Genre: "Electronic", Description: "Boards of Canada", URL: "https://example.com/tracks/roygbiv.mp3"},
		{Title: "Glory Box", Genre: "Trip Hop", Description: "Portishead, Dummy", URL: "https://example.com/tracks/glory-box.mp3"},
		{Title: "Says", Genre: "Modern Classical", Description: "Nils Frahm, Spaces", URL: "https://example.com/tracks/says.mp3"},
	}

	var first store.Track
	for i, in := range seed {
		track, err := trackSvc.CreateTrack(ctx, caller, in)
		if err != nil {
			return fmt.Errorf("insert demo track %q: %w", in.Title, err)
		}
		if i == 0 {
			first = track
		}
	}

	if _, err := trackSvc.CreateLike(ctx, caller, first.ID); err != nil {
		return fmt.Errorf("insert demo like: %w", err)
	}
	if _, err := trackSvc.CreateComment(ctx, caller, first.ID, tracks.CommentInput{
		Comment:   "That harpsichord intro.",
		MusicTime: 12,
	}); err != nil {
		return fmt.Errorf("insert demo comment: %w", err)
	}

	log.Info().Int("tracks", len(seed)).Msg("seeded demo data")
	return nil
}
