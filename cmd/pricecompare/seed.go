package main

import (
	"context"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const fileFlag = "file"

var seedFlags = func() map[string]cobraflags.Flag {
	flags := configFlags()
	flags[fileFlag] = &cobraflags.StringFlag{
		Name:  fileFlag,
		Value: "products.json",
		Usage: `JSON seed file, either {"products": [...]} or a bare list of products`,
	}
	return flags
}()

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load products and initial prices from a JSON file",
		RunE:  seedCommand,
	}
	cobraflags.RegisterMap(cmd, seedFlags)
	return cmd
}

func seedCommand(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, seedFlags[configFlag].GetString())
	defer a.close()
	if err != nil {
		return err
	}

	path := seedFlags[fileFlag].GetString()
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "error opening seed file: %s", path)
	}
	defer f.Close()

	summary, err := a.server.Seed(ctx, f)
	if err != nil {
		return err
	}
	a.logger.Infof("Seeded %d product(s) and %d price observation(s) from %s, skipped: %d",
		summary.Products, summary.Observations, path, summary.Skipped)
	return nil
}
