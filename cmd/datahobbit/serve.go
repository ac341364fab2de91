package main

import (
	"strconv"

	"github.com/TFMV/datahobbit/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ServeOptions holds the serve flags that are not backed by configuration.
type ServeOptions struct {
	MaxRecords int64
	Prefork    bool
}

func newServeCommand(c *cli) *cobra.Command {
	options := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generation over HTTP",
		Long: `The serve command starts an HTTP API exposing GET /health, GET /version,
GET /types and POST /generate. Every path in a request is resolved inside
--output-dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := api.NewServer(api.ServerOptions{
				Port:       strconv.Itoa(c.cfg.Server.Port),
				Prefork:    options.Prefork,
				OutputDir:  c.cfg.Server.OutputDir,
				MaxRecords: options.MaxRecords,
				Logger:     c.log,
			})
			c.log.Info("Starting server",
				zap.Int("port", c.cfg.Server.Port),
				zap.String("output_dir", c.cfg.Server.OutputDir))
			return server.Start()
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().String("output-dir", ".", "Directory holding schemas and generated files")
	cmd.Flags().Int64Var(&options.MaxRecords, "max-records", 0, "Largest record count a request may ask for (0 for no limit)")
	cmd.Flags().BoolVar(&options.Prefork, "prefork", false, "Spawn multiple listener processes")
	_ = c.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = c.v.BindPFlag("server.output_dir", cmd.Flags().Lookup("output-dir"))

	return cmd
}
