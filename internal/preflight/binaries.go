package preflight

import (
	"fmt"
	"os/exec"
	"strings"
)

// Binary describes one external tool the pipeline shells out to.
type Binary struct {
	Name     string
	Command  string
	Purpose  string
	Optional bool
}

// BinaryStatus reports whether a pipeline binary is usable on this host.
type BinaryStatus struct {
	Binary
	Available bool
	Detail    string
}

// checkBinaries resolves each tool on PATH and reports its availability.
func checkBinaries(binaries []Binary) []BinaryStatus {
	statuses := make([]BinaryStatus, 0, len(binaries))
	for _, bin := range binaries {
		bin.Command = strings.TrimSpace(bin.Command)
		status := BinaryStatus{Binary: bin}
		switch {
		case bin.Command == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(bin.Command); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", bin.Command)
			} else {
				status.Available = true
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}
