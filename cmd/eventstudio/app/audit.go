package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/audit"
	"github.com/randalmurphal/eventstudio/pkg/eventstudio/config"
)

// errNoAuditStore is returned when the audit commands have nothing to read.
var errNoAuditStore = errors.New("audit commands need --audit-driver=sqlite and --audit-path")

// NewAuditCommand creates the audit command group.
func (a *App) NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect a sqlite audit store",
	}
	cmd.AddCommand(a.newAuditListCommand())
	cmd.AddCommand(a.newAuditPurgeCommand())
	return cmd
}

func (a *App) openAuditStore() (audit.Store, error) {
	if a.settings.Audit.Driver != config.AuditSQLite {
		return nil, errNoAuditStore
	}
	return a.openAudit(a.settings.Audit)
}

func (a *App) newAuditListCommand() *cobra.Command {
	var (
		station string
		limit   int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the latest audit records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			store, err := a.openAuditStore()
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, store.Close())
			}()

			records, err := store.List(station, limit)
			if err != nil {
				return fmt.Errorf("list audit records: %w", err)
			}
			return writeRecords(cmd.OutOrStdout(), records, format)
		},
	}

	cmd.Flags().StringVarP(&station, "station", "s", "", "only records of this station")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records, 0 for all")
	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table, json, yaml")
	return cmd
}

func (a *App) newAuditPurgeCommand() *cobra.Command {
	var station string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove audit records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			store, err := a.openAuditStore()
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, store.Close())
			}()

			n, err := store.Purge(station)
			if err != nil {
				return fmt.Errorf("purge audit records: %w", err)
			}
			a.logger.Info("audit records purged", "station", station, "count", n)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %d records\n", n)
			return err
		},
	}

	cmd.Flags().StringVarP(&station, "station", "s", "", "only records of this station")
	return cmd
}

// recordView is the printed form of an audit record.
type recordView struct {
	Sequence    int64  `json:"sequence" yaml:"sequence"`
	ID          string `json:"id" yaml:"id"`
	Station     string `json:"station" yaml:"station"`
	EventType   string `json:"event_type" yaml:"event_type"`
	Payload     string `json:"payload" yaml:"payload"`
	InspectedAt string `json:"inspected_at" yaml:"inspected_at"`
}

func writeRecords(w io.Writer, records []audit.Record, format string) error {
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, recordView{
			Sequence:    rec.Sequence,
			ID:          rec.ID,
			Station:     rec.Station,
			EventType:   rec.EventType,
			Payload:     string(rec.Payload),
			InspectedAt: rec.InspectedAt.Format(time.RFC3339Nano),
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(views)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tSTATION\tTYPE\tINSPECTED\tPAYLOAD")
		for _, v := range views {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", v.Sequence, v.Station, v.EventType, v.InspectedAt, v.Payload)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
