// Package root provides the root command for the coffee shop environment server
package root

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/coffeeshop/frontend-environment/internal/config"
	"github.com/coffeeshop/frontend-environment/internal/environment"
	"github.com/coffeeshop/frontend-environment/internal/logging"
	"github.com/coffeeshop/frontend-environment/pkg/handlers"
	"github.com/coffeeshop/frontend-environment/pkg/kubernetes"
)

var (
	format    string
	namespace string
	name      string
)

var rootCmd = &cobra.Command{
	Use:   "coffeeshop-environment",
	Short: "Serves the coffee shop frontend environment",
	Long: `Serves the static environment the coffee shop frontend reads at startup:
the API server base URL, the production flag and the authentication tenant settings`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the environment",
	Args:  cobra.NoArgs,
	RunE:  runPrint,
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the environment to the current cluster as a ConfigMap",
	Args:  cobra.NoArgs,
	RunE:  runPublish,
}

func init() {
	// Read through config.FlagMappings, not bound to variables.
	rootCmd.PersistentFlags().StringP("port", "p", "8080", "Server port")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")

	printCmd.Flags().StringVarP(&format, "format", "o", "json", "Output format (json, yaml)")

	publishCmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the ConfigMap")
	publishCmd.Flags().StringVar(&name, "name", "frontend-environment", "Name of the ConfigMap")

	rootCmd.AddCommand(printCmd, publishCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command) (*config.Config, environment.Environment, error) {
	env := environment.Current()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, env, err
	}

	if err := logging.Setup(cfg.Logging.Level, env.Production); err != nil {
		return nil, env, fmt.Errorf("failed to set up logging: %w", err)
	}

	return cfg, env, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, env, err := setup(cmd)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Server.Port, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, ln, cfg.Server, env)
}

// newRouter sets the gin mode from the production flag and mounts the
// environment handlers.
func newRouter(env environment.Environment) (*gin.Engine, error) {
	if env.Production {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	h, err := handlers.NewHandler(env)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(handlers.RequestLogger())
	router.Use(gin.Recovery())

	h.Register(router)

	return router, nil
}

// serve runs the HTTP server on ln until ctx is done, then shuts it down
// within cfg.ShutdownTimeout.
func serve(ctx context.Context, ln net.Listener, cfg config.ServerConfig, env environment.Environment) error {
	router, err := newRouter(env)
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", ln.Addr().String()).
			Bool("production", env.Production).
			Str("api_server_url", env.APIServerURL).
			Msg("starting server")

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")

	return nil
}

func runPrint(cmd *cobra.Command, _ []string) error {
	return renderEnvironment(cmd.OutOrStdout(), environment.Current(), format)
}

func renderEnvironment(w io.Writer, env environment.Environment, format string) error {
	var (
		out []byte
		err error
	)

	switch format {
	case "json":
		out, err = json.MarshalIndent(env, "", "  ")
		out = append(out, '\n')
	case "yaml":
		out, err = yaml.Marshal(env)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode environment: %w", err)
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write environment: %w", err)
	}

	return nil
}

func runPublish(cmd *cobra.Command, _ []string) error {
	cfg, env, err := setup(cmd)
	if err != nil {
		return err
	}

	client, err := kubernetes.NewClient()
	if err != nil {
		return fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return publish(cmd.Context(), client, cfg.Publish, env)
}

func publish(ctx context.Context, client *kubernetes.Client, cfg config.PublishConfig, env environment.Environment) error {
	created, err := client.ApplyEnvironment(ctx, cfg.Namespace, cfg.Name, env)
	if err != nil {
		return fmt.Errorf("failed to publish environment: %w", err)
	}

	action := "updated"
	if created {
		action = "created"
	}

	log.Info().
		Str("namespace", cfg.Namespace).
		Str("name", cfg.Name).
		Str("action", action).
		Msg("published environment configmap")

	return nil
}
