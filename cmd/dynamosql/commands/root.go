// Package commands implements the dynamosql CLI commands.
package commands

import (
	"context"

	"github.com/kent-id/dynamosql"
	"github.com/kent-id/dynamosql/internal/config"
	sdk "github.com/kent-id/dynamosql/sdk/dynamodb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand(version string) *cobra.Command {
	v, err := config.New()
	if err != nil {
		v = viper.New()
	}

	cmd := &cobra.Command{
		Use:           "dynamosql",
		Short:         "Run SQL statements against DynamoDB",
		Long:          "dynamosql compiles SQL-flavored statements into PartiQL or DynamoDB table operations and prints the results.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("region", "", "AWS region")
	flags.String("endpoint", "", "DynamoDB endpoint override, e.g. http://localhost:8000")
	flags.String("profile", "", "AWS shared config profile")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("consistent-read", false, "use strongly consistent reads for SELECT")
	_ = v.BindPFlag("region", flags.Lookup("region"))
	_ = v.BindPFlag("endpoint", flags.Lookup("endpoint"))
	_ = v.BindPFlag("profile", flags.Lookup("profile"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("consistent_read", flags.Lookup("consistent-read"))

	env := &environment{viper: v}
	cmd.AddCommand(NewQueryCommand(env))
	cmd.AddCommand(NewBatchCommand(env))
	cmd.AddCommand(NewTablesCommand(env))
	return cmd
}

// environment lazily loads the configuration and the DynamoDB client for a command run.
type environment struct {
	viper  *viper.Viper
	client sdk.DynamoDBClientV2
}

func (e *environment) cursor(ctx context.Context) (*dynamosql.Cursor, error) {
	if e.client != nil {
		return e.client.Cursor(), nil
	}

	cfg, err := config.LoadConfig(e.viper)
	if err != nil {
		return nil, err
	}
	level, err := dynamosql.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	dynamosql.SetLogLevel(level)

	e.client, err = sdk.LoadClientV2(ctx, cfg.Region, cfg.Endpoint, cfg.Profile, cfg.ConnectionOptions()...)
	if err != nil {
		return nil, err
	}
	return e.client.Cursor(), nil
}
