package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var checkAlertsFlags = configFlags()

func newCheckAlertsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-alerts",
		Short: "Run one alert evaluation pass and print the summary",
		Long: `Run one alert evaluation pass over the active alerts, send webhook
notifications for newly triggered alerts and print the summary as JSON.`,
		RunE: checkAlertsCommand,
	}
	cobraflags.RegisterMap(cmd, checkAlertsFlags)
	return cmd
}

func checkAlertsCommand(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, checkAlertsFlags[configFlag].GetString())
	defer a.close()
	if err != nil {
		return err
	}

	summary, err := a.server.CheckAlerts(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(summary), "error writing summary")
}
