package observability

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// ProbeTimeout bounds each diagnostic probe.
const ProbeTimeout = time.Second

// OllamaProbe is the subset of the Ollama client used for diagnostics.
type OllamaProbe interface {
	Heartbeat(ctx context.Context) error
	ListRunning(ctx context.Context) (*ollama.ProcessResponse, error)
}

// Probes lists what Diagnose should look at. A nil Ollama client skips the
// server checks.
type Probes struct {
	Ollama       OllamaProbe
	Model        string
	Credentials  map[string]bool // name -> present
	ProbeTimeout time.Duration
}

// Check is one line of the diagnostic report.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Report is the outcome of Diagnose.
type Report struct {
	Checks []Check
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Diagnose probes the model server and reports which tool credentials are
// configured. Probes never fail the call; problems are reported as checks.
func Diagnose(ctx context.Context, p Probes) Report {
	timeout := p.ProbeTimeout
	if timeout <= 0 {
		timeout = ProbeTimeout
	}

	var report Report
	if p.Ollama != nil {
		report.Checks = append(report.Checks, heartbeat(ctx, p.Ollama, timeout))
		report.Checks = append(report.Checks, runningModel(ctx, p.Ollama, p.Model, timeout))
	}
	for _, name := range slices.Sorted(maps.Keys(p.Credentials)) {
		c := Check{Name: name, OK: p.Credentials[name], Detail: "configured"}
		if !c.OK {
			c.Detail = "missing"
		}
		report.Checks = append(report.Checks, c)
	}
	return report
}

func heartbeat(ctx context.Context, client OllamaProbe, timeout time.Duration) Check {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Heartbeat(ctx); err != nil {
		return Check{Name: "ollama", Detail: fmt.Sprintf("unreachable: %v", err)}
	}
	return Check{Name: "ollama", OK: true, Detail: "reachable"}
}

func runningModel(ctx context.Context, client OllamaProbe, model string, timeout time.Duration) Check {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.ListRunning(ctx)
	if err != nil {
		return Check{Name: "model", Detail: fmt.Sprintf("could not list running models: %v", err)}
	}
	for _, m := range resp.Models {
		if model == "" || m.Name == model || m.Model == model {
			return Check{
				Name:   "model",
				OK:     true,
				Detail: fmt.Sprintf("%s loaded (size %s, vram %s)", m.Name, formatBytes(m.Size), formatBytes(m.SizeVRAM)),
			}
		}
	}
	if len(resp.Models) == 0 {
		// Cloud models and cold starts show nothing here; the server itself is fine.
		return Check{Name: "model", OK: true, Detail: "no model loaded"}
	}
	return Check{Name: "model", OK: true, Detail: fmt.Sprintf("%s not loaded", model)}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
