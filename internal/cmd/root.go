package cmd

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jparrax/datascience-middle-course/pkg/config"
	"github.com/jparrax/datascience-middle-course/pkg/logging"
)

// runtime carries the per-invocation viper instance shared by subcommands.
type runtime struct {
	v *viper.Viper
}

// NewRootCmd builds the treeviz command tree.
func NewRootCmd() *cobra.Command {
	rt := &runtime{v: viper.New()}

	root := &cobra.Command{
		Use:   "treeviz",
		Short: "Render decision tree boundaries over training data",
		Long: `treeviz trains a decision tree (or random forest) on two features,
paints its decision surface over a padded grid and overlays the training
points coloured by class.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.initConfig,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is ./treeviz.yaml if present)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = rt.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = rt.v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(rt.newPlotCmd(), newBlobsCmd(), newDescribeCmd(), newConfigCmd())
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (rt *runtime) initConfig(cmd *cobra.Command, _ []string) error {
	v := rt.v
	config.SetDefaults(v)

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("treeviz")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(config.EnvPrefix)
	// TREEVIZ_BOUNDARY_ALPHA for boundary.alpha
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if v.GetString("config") != "" || !errors.As(err, &notFound) {
			return errors.Wrap(err, "read config")
		}
	}
	return nil
}

// load unmarshals the merged configuration and builds its logger.
func (rt *runtime) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(rt.v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.Development, logging.FileConfig{Path: cfg.Logging.File})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
