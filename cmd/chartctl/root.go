package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/source"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "chartctl",
		Short: "Aggregate time series and export chart images",
		Long: `chartctl works on the same JSON series the chart server loads:
an array of {"timestamp": "...", "value": n} objects.

Example usage:
  chartctl aggregate --input data.json --granularity monthly
  chartctl aggregate --input data.json --granularity weekly --output markdown
  chartctl export --input data.json --granularity monthly --format jpg --out ./out`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = log.New(cmd.ErrOrStderr(), "[chartctl] ", log.LstdFlags)
			return a.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .chartctl.yaml)")
	flags.StringP("input", "i", "data.json", "series JSON file, - for stdin")
	flags.StringP("granularity", "g", "daily", "granularity (daily, weekly, monthly)")

	_ = a.v.BindPFlag("input", flags.Lookup("input"))
	_ = a.v.BindPFlag("granularity", flags.Lookup("granularity"))

	root.AddCommand(newAggregateCmd(a), newExportCmd(a), newVersionCmd())
	return root
}

// initConfig reads the optional config file and CHARTCTL_* environment variables.
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName(".chartctl")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME/.config/chartctl")
	}

	a.v.SetEnvPrefix("CHARTCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func (a *app) granularity() (domain.Granularity, error) {
	return domain.ParseGranularity(a.v.GetString("granularity"))
}

// readInput loads the series named by --input.
func (a *app) readInput(cmd *cobra.Command) (domain.Series, error) {
	path := a.v.GetString("input")
	if path == "-" {
		return decodeFrom(cmd.InOrStdin())
	}
	return source.NewFileSource(path).Fetch(cmd.Context())
}

func decodeFrom(r io.Reader) (domain.Series, error) {
	series, err := source.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode stdin: %w", err)
	}
	return series, nil
}
