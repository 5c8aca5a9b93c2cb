package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/2beens/lifedash/internal/analytics"
	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/reminders"
	"github.com/2beens/lifedash/internal/store"
	"github.com/2beens/lifedash/internal/timeseries"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	dumpFile    string
	anchor      string
	timezone    string
	averageMode string
	out         io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{out: out}

	rootCmd := &cobra.Command{
		Use:          "lifedashctl",
		Short:        "Offline analytics and reminder dry-runs over a lifedash record dump",
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dumpFile, "dump", "", "path to a JSON dump (object of record key to collection)")
	flags.StringVar(&opts.anchor, "anchor", "", "anchor day yyyy-MM-dd (default: today in --tz)")
	flags.StringVar(&opts.timezone, "tz", "UTC", "IANA timezone used to resolve today and wall-clock rules")
	flags.StringVar(&opts.averageMode, "average-mode", string(analytics.AverageByPeriodLength), "daily average divisor: period_length or days_with_data")

	rootCmd.AddCommand(
		newStreaksCmd(opts),
		newPeriodCmd(opts),
		newPRsCmd(opts),
		newOverviewCmd(opts),
		newRemindersCmd(opts),
	)
	return rootCmd
}

func (o *rootOptions) location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone [%s]: %w", o.timezone, err)
	}
	return loc, nil
}

func (o *rootOptions) anchorDay() (time.Time, error) {
	if o.anchor != "" {
		return timeseries.ParseDay(o.anchor)
	}
	loc, err := o.location()
	if err != nil {
		return time.Time{}, err
	}
	return timeseries.DayOf(time.Now().In(loc)), nil
}

func (o *rootOptions) repo() (*records.Repo, error) {
	if o.dumpFile == "" {
		return nil, fmt.Errorf("--dump is required")
	}
	data, err := os.ReadFile(o.dumpFile)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	memStore, err := store.NewMemoryStoreFromDump(data)
	if err != nil {
		return nil, err
	}
	return records.NewRepo(memStore, nil), nil
}

func (o *rootOptions) analyzer() (*analytics.Analyzer, error) {
	mode, err := analytics.ParseAverageMode(o.averageMode)
	if err != nil {
		return nil, err
	}
	repo, err := o.repo()
	if err != nil {
		return nil, err
	}
	return analytics.NewAnalyzer(repo, mode), nil
}

// printPartial prints what could be computed when only some collections
// failed to load.
func (o *rootOptions) printPartial(v any, incomplete []string, err error) error {
	if err != nil {
		log.Warnf("partial result, %s: %s", strings.Join(incomplete, ","), err)
	}
	return o.printJSON(v)
}

func (o *rootOptions) printJSON(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newStreaksCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streaks",
		Short: "Current streak per habit at the anchor day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyzer, err := opts.analyzer()
			if err != nil {
				return err
			}
			anchor, err := opts.anchorDay()
			if err != nil {
				return err
			}
			report, err := analyzer.Streaks(cmd.Context(), anchor)
			if err != nil {
				return err
			}
			return opts.printJSON(report)
		},
	}
}

func newPeriodCmd(opts *rootOptions) *cobra.Command {
	var (
		items string
		top   int
	)
	cmd := &cobra.Command{
		Use:   "period <week|month>",
		Short: "Aggregated stats for the period containing the anchor day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := timeseries.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			analyzer, err := opts.analyzer()
			if err != nil {
				return err
			}
			anchor, err := opts.anchorDay()
			if err != nil {
				return err
			}

			params := analytics.PeriodParams{
				Period: period,
				Anchor: anchor,
				TopN:   top,
			}
			if cmd.Flags().Changed("items") {
				params.ItemIDs = splitItems(items)
			}

			summary, err := analyzer.Period(cmd.Context(), params)
			if summary == nil {
				return err
			}
			return opts.printPartial(summary, summary.Incomplete, err)
		},
	}
	cmd.Flags().StringVar(&items, "items", "", "comma separated habit ids to track (default: every habit)")
	cmd.Flags().IntVar(&top, "top", 5, "number of top and bottom items to list")
	return cmd
}

func splitItems(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func newPRsCmd(opts *rootOptions) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "prs",
		Short: "Personal records per exercise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyzer, err := opts.analyzer()
			if err != nil {
				return err
			}
			prs, err := analyzer.PersonalRecords(cmd.Context(), top)
			if err != nil {
				return err
			}
			return opts.printJSON(prs)
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "limit the number of records (0 means all)")
	return cmd
}

func newOverviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Dashboard overview for the anchor day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analyzer, err := opts.analyzer()
			if err != nil {
				return err
			}
			anchor, err := opts.anchorDay()
			if err != nil {
				return err
			}
			overview, err := analyzer.Overview(cmd.Context(), anchor)
			if overview == nil {
				return err
			}
			return opts.printPartial(overview, overview.Incomplete, err)
		},
	}
}

func newRemindersCmd(opts *rootOptions) *cobra.Command {
	remindersCmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder rule tooling",
	}
	remindersCmd.AddCommand(newRemindersEvalCmd(opts))
	return remindersCmd
}

func newRemindersEvalCmd(opts *rootOptions) *cobra.Command {
	var (
		at        string
		rulesFile string
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Dry-run one evaluation pass and print what would fire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			now := time.Now()
			if at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
			}

			rulesData, err := os.ReadFile(rulesFile)
			if err != nil {
				return fmt.Errorf("read rules: %w", err)
			}
			settings, err := reminders.ParseSettings(rulesFile, rulesData)
			if err != nil {
				return err
			}

			repo, err := opts.repo()
			if err != nil {
				return err
			}

			engine := reminders.NewEngine(reminders.EngineParams{
				Settings: reminders.StaticSettings(settings),
				Repo:     repo,
				Ledger:   reminders.NewMemoryLedger(),
				Notifier: reminders.LogNotifier{},
				Location: loc,
			})
			result, err := engine.RunPass(cmd.Context(), now)
			if err != nil {
				return err
			}
			return opts.printJSON(result)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluation instant, RFC3339 (default: now)")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "reminder settings file (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("rules")
	return cmd
}
