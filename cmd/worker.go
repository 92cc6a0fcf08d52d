package cmd

import (
	"lendcore/service/oracle"
	"lendcore/worker"
	"lendcore/worker/keeper"
	"lendcore/worker/pricesync"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run the keeper and price sync jobs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := signal.WithContext(cmd.Context())
		log := logger.FromContext(ctx)

		database := provideDatabase()
		defer database.Close()

		c := provideConfig()
		s := provideStores(database)
		srv := provideServices(s)

		k, err := keeper.New(c, s.banks, s.settings, srv.banks, s.properties)
		if err != nil {
			log.WithError(err).Fatalln("keeper.New")
		}

		jobs := []worker.IJob{k}

		if c.Oracle.Endpoint != "" {
			syncer, err := pricesync.New(c, s.banks, s.prices, oracle.NewFeed(c.Oracle.Endpoint))
			if err != nil {
				log.WithError(err).Fatalln("pricesync.New")
			}

			jobs = append(jobs, syncer)
		}

		for _, job := range jobs {
			if err := job.Start(); err != nil {
				log.WithError(err).Fatalln("job.Start")
			}
		}

		log.Infof("%d jobs running", len(jobs))
		<-ctx.Done()

		for _, job := range jobs {
			_ = job.Stop()
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
