package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"ptai/internal/config"
	"ptai/internal/database"
	"ptai/internal/dataset"
	"ptai/internal/names"
	"ptai/internal/stats"
)

// app carries what every command needs once configuration has been read.
type app struct {
	cfg    *config.Config
	loader *dataset.Loader
	policy stats.Policy
	color  bool
	db     *database.Database
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		a       = &app{}
	)
	v := config.New()
	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(v, cfgFile)
		if err != nil {
			return nil, err
		}
		return cfg, config.InitLogger(cfg.Log)
	}

	root := &cobra.Command{
		Use:           "ptai",
		Short:         "Public transport accessibility and disadvantage by suburb",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return a.setup(cmd.Context(), cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db != nil {
				if err := a.db.Close(); err != nil {
					zap.L().Warn("close database", zap.Error(err))
				}
			}
			_ = zap.L().Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.interactive(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./ptai.yaml)")
	flags.String("attributes", "", "attribute CSV path")
	flags.String("geometry", "", "boundary shapefile path")
	flags.Bool("no-color", false, "disable coloured output")
	_ = v.BindPFlag("data.attributes_path", flags.Lookup("attributes"))
	_ = v.BindPFlag("data.geometry_path", flags.Lookup("geometry"))
	_ = v.BindPFlag("output.no_color", flags.Lookup("no-color"))

	root.AddCommand(newListCmd(a), newShowCmd(a), newCorrelationsCmd(a), newConfigCmd(loadConfig))
	return root
}

// setup builds the dataset loader from cfg. Nothing is read until the first
// command asks for the dataset.
func (a *app) setup(ctx context.Context, cfg *config.Config) error {
	a.cfg = cfg

	policy, err := stats.ParsePolicy(cfg.Stats.MissingPolicy)
	if err != nil {
		return err
	}
	a.policy = policy
	a.color = !cfg.Output.NoColor && term.IsTerminal(int(os.Stdout.Fd()))

	opts := dataset.Options{
		Attributes:        dataset.CSVFile(cfg.Data.AttributesPath),
		GeometryPath:      cfg.Data.GeometryPath,
		GeometryNameField: cfg.Data.GeometryNameField,
		SourceCRS:         cfg.Data.SourceCRS,
		Columns:           cfg.Columns,
		Names:             names.Folder{StripDiacritics: cfg.Match.FoldDiacritics},
		StrictUnique:      cfg.Data.StrictUnique,
	}
	if cfg.Database.Enabled() {
		db, err := database.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		a.db = db
		opts.Attributes = db
	}

	zap.L().Debug("configured dataset",
		zap.Stringer("attributes", opts.Attributes),
		zap.String("geometry", opts.GeometryPath),
		zap.String("policy", string(policy)),
	)
	a.loader = dataset.NewLoader(opts)
	return nil
}
