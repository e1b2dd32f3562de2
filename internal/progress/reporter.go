// Package progress provides feedback while tenant indexes are built.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives per-tenant progress during index construction.
type Reporter interface {
	Start(total int)
	Update(current int, tenantID string)
	Finish()
}

// NewReporter returns a TerminalReporter, or a CIReporter when running
// under CI where a live progress bar would garble the logs.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Indexing tenants"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, tenantID string) {
	if r.bar != nil {
		r.bar.Describe(fmt.Sprintf("Indexing %s", tenantID))
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(os.Stderr, "Indexing %d tenants\n", total)
}

func (r *CIReporter) Update(current int, tenantID string) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, r.total, tenantID)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Indexing complete")
}
