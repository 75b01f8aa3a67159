package cli

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"gomata/internal/core"
	"gomata/internal/render"
	"gomata/pkg/domain"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newMenuCommand(app *App) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive registry menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var opts []core.Option
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				opts = append(opts, core.WithMetricsRecorder(core.MultiMetricsRecorder{
					core.NewPrometheusMetricsRecorder(reg),
					core.NewExpvarMetricsRecorder(""),
				}))
				_, stop, err := serveMetrics(metricsAddr, reg, app)
				if err != nil {
					return err
				}
				defer stop()
			}
			svc, err := app.service(ctx, opts...)
			if err != nil {
				return err
			}
			prompter := app.newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			defer func() { _ = prompter.Close() }()
			m := &menu{svc: svc, in: prompter, out: cmd.OutOrStdout()}
			return m.run(ctx)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics (/metrics) and expvar counters (/debug/vars) on this address during the session")
	return cmd
}

// serveMetrics exposes reg on /metrics and the expvar registry on
// /debug/vars, and returns the bound address and a shutdown func.
func serveMetrics(addr string, reg *prometheus.Registry, app *App) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/debug/vars", expvar.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server stopped", "error", err)
		}
	}()
	bound := ln.Addr().String()
	app.logger.Info("serving metrics", "addr", bound)
	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

type menu struct {
	svc *core.Service
	in  Prompter
	out io.Writer
}

// errQuit ends the session after the farewell message.
var errQuit = errors.New("quit")

func (m *menu) ask(prompt string) (string, error) {
	line, err := m.in.Prompt(prompt)
	return strings.TrimSpace(line), err
}

func (m *menu) run(ctx context.Context) error {
	render.Banner(m.out)
	for {
		fmt.Fprintln(m.out, "\n--- MENU ---")
		for i, item := range []string{
			"Register New Cattle",
			"Verify Cattle by Adhaar ID",
			"Update Cattle Information",
			"Search by Owner Name",
			"Deactivate Cattle",
			"View System Statistics",
			"Exit",
		} {
			fmt.Fprintf(m.out, "%d. %s\n", i+1, item)
		}
		choice, err := m.ask("\nEnter your choice (1-7): ")
		if err == nil {
			err = m.dispatch(ctx, choice)
		}
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, io.EOF):
			fmt.Fprintln(m.out)
			return nil
		case err != nil:
			return err
		}
	}
}

func (m *menu) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		return m.register(ctx)
	case "2":
		return m.verify()
	case "3":
		return m.update(ctx)
	case "4":
		return m.search()
	case "5":
		return m.deactivate(ctx)
	case "6":
		fmt.Fprintln(m.out, "\n--- SYSTEM STATISTICS ---")
		render.Statistics(m.out, m.svc.Statistics())
		return nil
	case "7":
		fmt.Fprintln(m.out, "\nThank you for using Gomata Adhaar System!")
		return errQuit
	default:
		fmt.Fprintln(m.out, "Invalid choice. Please try again.")
		return nil
	}
}

func (m *menu) register(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n--- REGISTER NEW CATTLE ---")
	var answers [6]string
	for i, prompt := range []string{
		"Owner Name: ",
		"Breed (e.g., Jersey, Gir, Holstein): ",
		"Age (years): ",
		"Gender (Male/Female/Ox): ",
		"Color/Markings: ",
		"Location (optional): ",
	} {
		v, err := m.ask(prompt)
		if err != nil {
			return err
		}
		answers[i] = v
	}
	age, err := strconv.Atoi(answers[2])
	if err != nil {
		fmt.Fprintln(m.out, "✗ Error: Age must be a number")
		return nil
	}
	var extra core.Fields
	if answers[5] != "" {
		extra = extra.With("location", answers[5])
	}
	id, err := m.svc.Register(ctx, answers[0], answers[1], age, answers[3], answers[4], extra)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\n✓ SUCCESS! Cattle registered with Adhaar ID: %s\n", id)
	fmt.Fprintln(m.out, "  Please save this 12-digit ID for future reference.")
	return nil
}

func (m *menu) verify() error {
	fmt.Fprintln(m.out, "\n--- VERIFY CATTLE ---")
	id, err := m.ask("Enter 12-digit Adhaar ID: ")
	if err != nil {
		return err
	}
	rec, ok := m.svc.Verify(id)
	render.Record(m.out, rec, ok)
	return nil
}

func (m *menu) update(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n--- UPDATE CATTLE INFORMATION ---")
	id, err := m.ask("Enter 12-digit Adhaar ID: ")
	if err != nil {
		return err
	}
	if _, ok := m.svc.Verify(id); !ok {
		fmt.Fprintln(m.out, "✗ Cattle not found!")
		return nil
	}
	fmt.Fprintln(m.out, "Enter new information (press Enter to skip):")
	var updates core.Fields
	owner, err := m.ask("New Owner Name: ")
	if err != nil {
		return err
	}
	if owner != "" {
		updates = updates.With(domain.FieldOwnerName, owner)
	}
	location, err := m.ask("New Location: ")
	if err != nil {
		return err
	}
	if location != "" {
		updates = updates.With("location", location)
	}
	if len(updates) == 0 {
		fmt.Fprintln(m.out, "No updates made.")
		return nil
	}
	if _, err := m.svc.Update(ctx, id, updates); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "✓ Information updated successfully!")
	return nil
}

func (m *menu) search() error {
	fmt.Fprintln(m.out, "\n--- SEARCH BY OWNER ---")
	owner, err := m.ask("Enter Owner Name: ")
	if err != nil {
		return err
	}
	render.SearchResults(m.out, owner, m.svc.SearchByOwner(owner))
	return nil
}

func (m *menu) deactivate(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n--- DEACTIVATE CATTLE ---")
	id, err := m.ask("Enter 12-digit Adhaar ID: ")
	if err != nil {
		return err
	}
	reason, err := m.ask("Reason for deactivation: ")
	if err != nil {
		return err
	}
	ok, err := m.svc.Deactivate(ctx, id, reason)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(m.out, "✓ Cattle deactivated successfully!")
	} else {
		fmt.Fprintln(m.out, "✗ Cattle not found!")
	}
	return nil
}
