package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryRuntime,
		Message:  "Evaluator panicked",
		Detail:   "A binding's evaluator panicked during a tick.",
	},
	"E203": {
		Category: CategoryRuntime,
		Message:  "Scheduler stopped",
		Detail:   "A panic escaped a tick before the next frame was requested; no further ticks will run.",
	},
	"E204": {
		Category: CategoryRuntime,
		Message:  "Unknown failure policy",
		Detail:   "The failure policy must be \"isolate\" or \"freeze\".",
	},

	// ============================================
	// Config Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No ima.json, ima.yaml or ima.yml was found.",
	},
	"E302": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The config file could not be parsed.",
	},
	"E303": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A config value is out of range.",
	},

	// ============================================
	// Publish Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryPublish,
		Message:  "Publish failed",
		Detail:   "The rendered output could not be written to its destination.",
	},
	"E402": {
		Category: CategoryPublish,
		Message:  "Publish target not configured",
		Detail:   "Set publish.bucket or pass an output path.",
	},

	// ============================================
	// Inspector Errors (E500-E599)
	// ============================================

	"E501": {
		Category: CategoryInspect,
		Message:  "Inspector failed to start",
		Detail:   "The inspector HTTP server could not listen on the configured address.",
	},
	"E502": {
		Category: CategoryInspect,
		Message:  "Element not found",
		Detail:   "No connected element has the requested id.",
	},
	"E503": {
		Category: CategoryInspect,
		Message:  "Engine unavailable",
		Detail:   "The frame loop owning the engine is not running or the request was cancelled.",
	},

	// ============================================
	// CLI Errors (E600-E699)
	// ============================================

	"E601": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command line argument is out of range.",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
