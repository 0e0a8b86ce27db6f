package cli

import (
	"encoding/json"
	"fmt"

	"github.com/georgepadayatti/gotsl/tsl"
)

// outputJSON outputs the results in JSON format.
func outputJSON(v any) {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(stderr, "Error encoding JSON: %v\n", err)
		osExit(1)
	}
}

// getStatusIcon returns a text icon for the status.
func getStatusIcon(status string) string {
	switch status {
	case StatusValid:
		return "[OK]"
	case StatusInvalid:
		return "[FAIL]"
	case StatusWarning:
		return "[WARN]"
	default:
		return "[?]"
	}
}

func boolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// isGranted reports whether a service status is a positive one.
func isGranted(status string) bool {
	return status == tsl.StatusGranted || status == tsl.StatusRecognisedAtNation
}
