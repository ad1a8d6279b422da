// Command waypoint answers questions about news, places and routes from the
// terminal.
//
// Examples:
//
//	export TAVILY_API_KEY=... GOOGLE_MAPS_API_KEY=...
//	waypoint ask "How do I get from Bogota to Medellin?"
//	waypoint chat
//	LLM_PROVIDER=openai LLM_MODEL=gpt-4o-mini waypoint ask "latest news about the election"
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	agent "github.com/Protocol-Lattice/waypoint"
	"github.com/Protocol-Lattice/waypoint/src/config"
	"github.com/Protocol-Lattice/waypoint/src/observability"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

type rootOptions struct {
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "waypoint",
		Short: "Assistant for news, places and directions",
		Long: titleStyle.Render("Waypoint") + `

Routes each question to web search, place search or directions and answers
with a language model grounded on the tool output.

` + dimStyle.Render("Configuration is read from the environment and an optional .env file."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 90*time.Second, "per-turn timeout (0 disables it)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "print routing details after each reply")

	root.AddCommand(newAskCmd(opts), newChatCmd(opts), newStatusCmd(), newToolsCmd())
	return root
}

// setup loads configuration and starts logging and, when configured, the
// metrics endpoint.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cmd.Context(), cfg.MetricsAddr, logger)
	}
	return cfg, logger, nil
}

func serveMetrics(ctx context.Context, addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			a, err := buildAgent(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return ask(cmd.Context(), a, strings.Join(args, " "), cmd.OutOrStdout(), opts)
		},
	}
}

func ask(ctx context.Context, a *agent.Agent, question string, w io.Writer, opts *rootOptions) error {
	ctx, cancel := withTimeout(ctx, opts.timeout)
	defer cancel()

	res, err := a.Respond(ctx, question)
	if err != nil {
		return err
	}
	renderReply(w, res, opts.verbose)
	return nil
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			a, err := buildAgent(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return chat(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
}

// historyPreview is how many recent messages /history shows.
const historyPreview = 3

// chat reads one question per line until EOF, "exit" or "quit". A failed
// turn is reported and the session continues. "/history" shows the last
// messages and "/clear" forgets them.
func chat(ctx context.Context, a *agent.Agent, r io.Reader, w io.Writer, opts *rootOptions) error {
	fmt.Fprintln(w, dimStyle.Render("Ask about news, places or directions. Type '/history', '/clear' or 'exit'."))
	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, titleStyle.Render("you> "))
		if !sc.Scan() {
			fmt.Fprintln(w)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/history":
			if log := a.History(); log != nil {
				renderHistory(w, log.Last(historyPreview))
			} else {
				renderHistory(w, nil)
			}
			continue
		case "/clear":
			if log := a.History(); log != nil {
				log.Reset()
			}
			fmt.Fprintln(w, dimStyle.Render("History cleared."))
			continue
		}
		if err := ask(ctx, a, line, w, opts); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(w, errorStyle.Render("error: "+err.Error()))
		}
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the model server and tool credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			report, err := diagnose(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), report)
			if !report.Healthy() {
				return errors.New("some checks failed")
			}
			return nil
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List tools and whether they are enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			a, err := buildAgent(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			renderTools(cmd.OutOrStdout(), a.ToolSpecs())
			return nil
		},
	}
}
