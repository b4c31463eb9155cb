package hierarchy

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

// ReportConflicts logs a warning per duplicate module definition and writes
// one line per duplicate to w. It returns the number of duplicates.
func ReportConflicts(w io.Writer, conflicts []registry.Conflict, logger *log.Logger) (int, error) {
	if len(conflicts) == 0 {
		if logger != nil {
			logger.Info("No modules defined more than once")
		}
		return 0, nil
	}
	for _, c := range conflicts {
		if logger != nil {
			logger.Warn(fmt.Sprintf("module %s defined at %s was previously defined", c.Name, c.Location))
		}
		if w == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "module %s defined in %s was previously defined\n", c.Name, c.Location.File); err != nil {
			return 0, fmt.Errorf("writing conflict report: %w", err)
		}
	}
	return len(conflicts), nil
}
