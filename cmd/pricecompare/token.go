package main

import (
	"fmt"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"pricecompare/internal/configuration"
	"pricecompare/internal/logger"
	"pricecompare/internal/server"
)

const subjectFlag = "subject"

var tokenFlags = func() map[string]cobraflags.Flag {
	flags := configFlags()
	flags[subjectFlag] = &cobraflags.StringFlag{
		Name:  subjectFlag,
		Value: "admin",
		Usage: "Subject of the issued catalog owner token",
	}
	return flags
}()

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a catalog owner token signed with auth_secret_key",
		RunE:  tokenCommand,
	}
	cobraflags.RegisterMap(cmd, tokenFlags)
	return cmd
}

// tokenCommand only needs the signing key, no database connection is made.
func tokenCommand(cmd *cobra.Command, _ []string) error {
	config, err := configuration.GetConfig(tokenFlags[configFlag].GetString())
	if err != nil {
		return err
	}
	srv := server.Server{
		Logger:        logger.Discard(),
		AuthSecretKey: config.AuthSecretKey,
		TokenTTL:      config.TokenTTL,
	}
	token, exp, err := srv.IssueToken(tokenFlags[subjectFlag].GetString())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n# expires at %s\n", token, exp.Format(time.RFC3339))
	return err
}
