package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/logging"
	"github.com/rayference/tengen/internal/registry"
	"github.com/rayference/tengen/internal/resource"
	"github.com/rayference/tengen/internal/sink"
)

const (
	formatNetCDF  = "netcdf"
	formatParquet = "parquet"
)

// resolveFormat picks the output format, inferring it from the file
// extension when not given.
func resolveFormat(format, fileName string) (string, error) {
	switch strings.ToLower(format) {
	case formatNetCDF, formatParquet:
		return strings.ToLower(format), nil
	case "":
		if strings.EqualFold(filepath.Ext(fileName), ".parquet") {
			return formatParquet, nil
		}
		return formatNetCDF, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want %s or %s)", format, formatNetCDF, formatParquet)
	}
}

func writeDataset(ds *dataset.Dataset, path, format string) error {
	if format == formatParquet {
		return dataset.WriteParquet(ds, path)
	}
	return dataset.Encode(ds, path)
}

func makeCmd(opts *globalOptions) *cobra.Command {
	var identifier, fileName, format string

	cmd := &cobra.Command{
		Use:   "make",
		Short: "Build a data set and write it to a file",
		Long: `make fetches the data set from its publisher, falling back to the local
cache when the network is unreachable, and writes it to --file-name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := resolveFormat(format, fileName)
			if err != nil {
				return err
			}
			if _, err := registry.Lookup(identifier); err != nil {
				return err
			}

			app, err := bootstrap(opts)
			if err != nil {
				return err
			}
			res, err := app.catalog.Lookup(identifier)
			if err != nil {
				return err
			}
			ds, err := res.Get(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeDataset(ds, fileName, outFormat); err != nil {
				return fmt.Errorf("write %s: %w", fileName, err)
			}

			fields := logging.BaseFields("make", opts.configPath)
			fields["resource"] = res.Name()
			fields["file"] = fileName
			fields["format"] = outFormat
			app.logger.WithFields(fields).Info("data set written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "data set identifier (see 'tengen list')")
	cmd.Flags().StringVarP(&fileName, "file-name", "f", "ds.nc", "output file name")
	cmd.Flags().StringVar(&format, "format", "", "output format: netcdf or parquet (default from extension)")
	_ = cmd.MarkFlagRequired("identifier")
	return cmd
}

func listCmd() *cobra.Command {
	var withSources bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available data set identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, desc := range registry.List() {
				fmt.Fprintf(tw, "%s\t%s\n", desc.ID, desc.Description)
				if withSources {
					for _, src := range desc.Sources {
						fmt.Fprintf(tw, "\t  %s\n", src)
					}
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&withSources, "sources", false, "also print source URLs")
	return cmd
}

func cacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local data set cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the cache directory tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadBase(opts)
			if err != nil {
				return err
			}
			if err := app.dir.Init(); err != nil {
				return err
			}
			fields := logging.BaseFields("cache_init", opts.configPath)
			fields["cache_dir"] = app.dir.Root()
			app.logger.WithFields(fields).Info("cache ready")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached data set files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadBase(opts)
			if err != nil {
				return err
			}
			names, err := app.dir.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the cache directory and its content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadBase(opts)
			if err != nil {
				return err
			}
			if err := app.dir.Remove(); err != nil {
				return err
			}
			fields := logging.BaseFields("cache_clear", opts.configPath)
			fields["cache_dir"] = app.dir.Root()
			app.logger.WithFields(fields).Info("cache removed")
			return nil
		},
	})

	cmd.AddCommand(cachePushCmd(opts))
	return cmd
}

func cachePushCmd(opts *globalOptions) *cobra.Command {
	var (
		identifiers []string
		all         bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Fetch data sets into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(identifiers) > 0) {
				return errors.New("pass either --identifier or --all")
			}
			for _, id := range identifiers {
				if _, err := registry.Lookup(id); err != nil {
					return err
				}
			}

			app, err := bootstrap(opts)
			if err != nil {
				return err
			}

			var targets []*resource.Resource
			if all {
				targets = app.catalog.List()
			} else {
				for _, id := range identifiers {
					res, err := app.catalog.Lookup(id)
					if err != nil {
						return err
					}
					targets = append(targets, res)
				}
			}

			for _, res := range targets {
				if err := res.PushToCache(cmd.Context(), force); err != nil {
					return err
				}
				path, _ := res.CachePath()
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&identifiers, "identifier", "i", nil, "data set identifier, repeatable")
	cmd.Flags().BoolVar(&all, "all", false, "push every data set")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing cache entries")
	return cmd
}

func ingestCmd(opts *globalOptions) *cobra.Command {
	var (
		identifier  string
		host        string
		database    string
		table       string
		createTable bool
		batchSize   int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Export a data set to ClickHouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := registry.Lookup(identifier); err != nil {
				return err
			}
			app, err := bootstrap(opts)
			if err != nil {
				return err
			}
			if host != "" {
				app.cfg.ClickHouse.Host = host
			}
			if database != "" {
				app.cfg.ClickHouse.Database = database
			}
			if table != "" {
				app.cfg.ClickHouse.Table = table
			}
			if err := app.cfg.Validate(); err != nil {
				return err
			}

			res, err := app.catalog.Lookup(identifier)
			if err != nil {
				return err
			}
			ds, err := res.Get(cmd.Context())
			if err != nil {
				return err
			}

			conn, err := sink.Dial(cmd.Context(), app.cfg.ClickHouse)
			if err != nil {
				return err
			}
			defer conn.Close()

			writer := sink.NewWriter(conn, app.cfg.ClickHouse.TableFQN(), app.logger).WithBatchSize(batchSize)
			if createTable {
				if err := writer.EnsureTable(cmd.Context()); err != nil {
					return err
				}
			}
			rows, err := writer.Write(cmd.Context(), res.Name(), ds)
			if err != nil {
				return err
			}

			app.logger.WithFields(logrus.Fields{
				"action":   "ingest",
				"resource": res.Name(),
				"table":    app.cfg.ClickHouse.TableFQN(),
				"rows":     rows,
			}).Info("ingest complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "data set identifier")
	cmd.Flags().StringVar(&host, "ch-host", "", "ClickHouse native address (default ClickHouseHost)")
	cmd.Flags().StringVar(&database, "ch-db", "", "ClickHouse database (default ClickHouseDatabase)")
	cmd.Flags().StringVar(&table, "ch-table", "", "ClickHouse table (default ClickHouseTable)")
	cmd.Flags().BoolVar(&createTable, "create-table", false, "create the table when missing")
	cmd.Flags().IntVar(&batchSize, "batch-size", sink.DefaultBatchSize, "rows per insert")
	_ = cmd.MarkFlagRequired("identifier")
	return cmd
}
