package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/retrodex-labs/retrodex/pkg/core"
)

// NewCoresCommand creates the cores command and its subcommands.
func NewCoresCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cores",
		Short: "Browse the core catalog",
	}

	cmd.AddCommand(newCoresListCommand())
	cmd.AddCommand(newCoresGetCommand())

	return cmd
}

func newCoresListCommand() *cobra.Command {
	var (
		pageNum       int64
		limit         int64
		systemRef     string
		platformRef   string
		teamRef       string
		releasedSince string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cores with their owners, systems, and latest release",
		Example: `  # List the first page of cores
  retrodex cores list

  # Cores for one system, released this year
  retrodex cores list --system mister-fpga --released-since 2026-01-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()

			var filter core.CoreFilter
			if systemRef != "" {
				sys, err := cc.Store.GetSystem(ctx, core.IDOrSlug(systemRef))
				if err != nil {
					return fmt.Errorf("system %q: %w", systemRef, err)
				}
				filter.SystemID = sys.ID
			}
			if platformRef != "" {
				p, err := cc.Store.GetPlatform(ctx, core.IDOrSlug(platformRef))
				if err != nil {
					return fmt.Errorf("platform %q: %w", platformRef, err)
				}
				filter.PlatformID = p.ID
			}
			if teamRef != "" {
				t, err := cc.Store.GetTeam(ctx, core.IDOrSlug(teamRef))
				if err != nil {
					return fmt.Errorf("team %q: %w", teamRef, err)
				}
				filter.TeamID = t.ID
			}
			if releasedSince != "" {
				ts, err := time.Parse("2006-01-02", releasedSince)
				if err != nil {
					return fmt.Errorf("invalid --released-since %q (want YYYY-MM-DD)", releasedSince)
				}
				filter.ReleasedSince = ts
			}

			details, err := cc.Store.ListCoreDetails(ctx, core.Page{Page: pageNum, Limit: limit}, filter)
			if err != nil {
				return err
			}

			if cc.Renderer.JSONMode() {
				return cc.Renderer.JSON(details)
			}

			rows := make([]table.Row, 0, len(details))
			for _, d := range details {
				systems := make([]string, 0, len(d.Systems))
				for _, s := range d.Systems {
					systems = append(systems, s.Slug)
				}
				latest := ""
				if d.LatestRelease != nil {
					latest = d.LatestRelease.Version
				}
				rows = append(rows, table.Row{
					d.Core.ID, d.Core.Slug, d.Core.Name,
					d.Owner.Slug, strings.Join(systems, ", "), latest,
				})
			}
			cc.Renderer.Table(table.Row{"ID", "SLUG", "NAME", "OWNER", "SYSTEMS", "LATEST"}, rows)
			return nil
		},
	}

	cmd.Flags().Int64Var(&pageNum, "page", 0, "Page number (zero-based)")
	cmd.Flags().Int64Var(&limit, "limit", core.DefaultPageLimit, "Rows per page")
	cmd.Flags().StringVar(&systemRef, "system", "", "Only cores for this system (id or slug)")
	cmd.Flags().StringVar(&platformRef, "platform", "", "Only cores whose latest release targets this platform (id or slug)")
	cmd.Flags().StringVar(&teamRef, "team", "", "Only cores owned by this team (id or slug)")
	cmd.Flags().StringVar(&releasedSince, "released-since", "", "Only cores released on or after this date (YYYY-MM-DD)")

	return cmd
}

func newCoresGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <core>",
		Short: "Show one core by id or slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			d, err := cc.Store.GetCoreDetails(cmd.Context(), core.IDOrSlug(args[0]))
			if err != nil {
				return err
			}

			if cc.Renderer.JSONMode() {
				return cc.Renderer.JSON(d)
			}

			cc.Renderer.Printf("%s (%s)\n", d.Core.Name, d.Core.Slug)
			if d.Core.Description != "" {
				cc.Renderer.Println(d.Core.Description)
			}
			cc.Renderer.Printf("owner: %s\n", d.Owner.Slug)
			for _, s := range d.Systems {
				cc.Renderer.Printf("system: %s\n", s.Slug)
			}
			if d.LatestRelease != nil {
				cc.Renderer.Printf("latest release: %s (%s)\n",
					d.LatestRelease.Version, d.LatestRelease.DateReleased.Format("2006-01-02"))
			}
			return nil
		},
	}
}
