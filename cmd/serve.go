package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/edutate/vanessa/internal/config"
	"github.com/edutate/vanessa/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for the web app",
	Long: `Serve the Vanessa JSON API. Every request names its user in the
X-User-Identity header and gets a session of its own backed by the
configured storage.`,
	Example: `  vanessa serve
  vanessa serve --addr 0.0.0.0:8787`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	addr := a.cfg.Server.Addr
	srv := server.New(server.Options{
		Addr:       addr,
		NewSession: a.newSession,
		Assistant:  a.assistant,
		Origins:    a.cfg.Server.Origins,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Vanessa API listening on http://%s (Ctrl+C to stop)\n", addr)
	if a.assistant == nil {
		fmt.Fprintln(out, "  No language model configured: chat, quotes and plan updates are disabled.")
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		fmt.Fprintf(out, "\nReceived %v, shutting down...\n", sig)
	case runErr = <-errChan:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "server shutdown: %v\n", err)
	}
	wg.Wait()
	return runErr
}

func init() {
	serveCmd.Flags().String("addr", config.DefaultServerAddr, "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
