package cmd

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveListen string
	serveOrigin string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the translating reverse proxy in front of the origin site",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		engine, _, err := buildEngine(logger)
		if err != nil {
			printError("building engine", err)
			return err
		}

		_, es, err := loadConfig()
		if err != nil {
			return err
		}
		if serveOrigin == "" {
			serveOrigin = es.Origin
		}
		if serveListen == ":8080" && es.Listen != "" {
			serveListen = es.Listen
		}
		if serveOrigin == "" {
			printError("serve", errMissingOrigin)
			return errMissingOrigin
		}

		originURL, err := url.Parse(serveOrigin)
		if err != nil {
			printError("parsing origin URL", err)
			return err
		}
		proxy := httputil.NewSingleHostReverseProxy(originURL)

		r := chi.NewRouter()
		r.Use(middleware.RealIP)
		r.Use(middleware.Recoverer)
		r.Handle("/*", engine.Middleware(proxy))

		srv := &http.Server{
			Addr:              serveListen,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		logger.WithFields(logrus.Fields{
			"listen": serveListen,
			"origin": serveOrigin,
		}).Info("pageling serving")
		return srv.ListenAndServe()
	},
}

var errMissingOrigin = &originError{}

type originError struct{}

func (*originError) Error() string {
	return "origin site URL required (--origin or PAGELING_ORIGIN)"
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveOrigin, "origin", "", "origin site URL to proxy and translate")
	rootCmd.AddCommand(serveCmd)
}
