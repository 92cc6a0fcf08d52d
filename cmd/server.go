package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lendcore/handler"
	"lendcore/handler/hc"
	"lendcore/handler/rest"

	"github.com/drone/signal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run lendcore api server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		s := provideStores(database)
		srv := provideServices(s)

		api := rest.Handle(s.banks, s.obligations, s.prices, s.events, srv.banks, srv.risk)
		checks := map[string]hc.Check{
			"database": func(ctx context.Context) error {
				_, err := s.prices.List(ctx)
				return err
			},
		}

		if client := provideRedis(); client != nil {
			checks["redis"] = func(ctx context.Context) error {
				return client.WithContext(ctx).Ping().Err()
			}
		}

		mux := handler.New(rootCmd.Version, api, checks).Handler()

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		logrus.Infoln("serve at", addr)
		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
}
