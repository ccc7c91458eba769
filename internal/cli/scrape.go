package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ea-events/internal/export"
	"github.com/pfrederiksen/ea-events/internal/fetch"
	"github.com/pfrederiksen/ea-events/internal/geo"
	"github.com/pfrederiksen/ea-events/internal/record"
	"github.com/pfrederiksen/ea-events/internal/store"
)

var flagMonthsAhead int

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the events calendar, update the store and write CSVs",
		RunE:  runScrape,
	}
	cmd.Flags().IntVar(&flagMonthsAhead, "months-ahead", 2, "how many calendar months to scrape, including the current one")
	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}
	ctx := context.Background()

	session, err := fetch.NewSession(cfg.BaseURL, cfg.Username, cfg.Password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	assembler := record.NewAssembler(geo.NewClient(cfg.MapsAPIKey), cfg.HomeAddress, cfg.WorkAddress, log)

	links, err := session.EventLinks(flagMonthsAhead)
	if err != nil {
		return fmt.Errorf("listing calendar events: %w", err)
	}
	log.WithField("links", len(links)).Info("Scraping event pages")

	var records []*record.Record
	for _, link := range links {
		page, err := session.EventPage(link)
		if err != nil {
			log.WithFields(logrus.Fields{"link": link, "error": err}).Warn("Skipping unreadable event page")
			continue
		}
		signup, err := session.SignupPage(link)
		if err != nil {
			// Full and passed events have no signup link; capacity
			// stays null for them.
			log.WithFields(logrus.Fields{"link": link, "error": err}).Debug("No signup page")
		}

		if rec := assembler.Assemble(ctx, link, page, signup); rec != nil {
			records = append(records, rec)
		}
	}
	log.WithField("records", len(records)).Info("Normalized records")

	if err := db.ReplaceEvents(ctx, records); err != nil {
		return err
	}

	// Export the full stored collection, not just this run's records, so
	// markers and past scrapes stay visible in the CSVs.
	all, err := db.LoadEvents(ctx)
	if err != nil {
		return err
	}
	return export.NewWriter(cfg.OutputDir, log).WriteAll(all)
}
