package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://github.com/vango-dev/reconcile/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reconciliation Errors (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryUsage,
		Message:  "Duplicate key among siblings",
		Detail:   "Two or more children of the same parent share a key. The later duplicate is mounted as a new node and its state is not reused.",
		DocURL:   docBase + "r001",
	},
	"R002": {
		Category: CategoryUsage,
		Message:  "Emitted event has no listener",
		Detail:   "A component emitted an event but its parent did not pass a matching on<Event> prop.",
		DocURL:   docBase + "r002",
	},
	"R003": {
		Category: CategoryUsage,
		Message:  "Attempt to mutate a prop",
		Detail:   "Props are owned by the parent component. The write was ignored; emit an event and let the parent update its own state instead.",
		DocURL:   docBase + "r003",
	},
	"R004": {
		Category: CategoryUsage,
		Message:  "Unknown render context property",
		Detail:   "The property is neither in component state, props, nor setup bindings.",
		DocURL:   docBase + "r004",
	},
	"R005": {
		Category: CategoryStructural,
		Message:  "Unknown VNode kind",
		Detail:   "The node kind is not one of element, text, fragment, component, async or keep-alive. Nothing was rendered for it.",
		DocURL:   docBase + "r005",
	},
	"R006": {
		Category: CategoryAsync,
		Message:  "Async component failed to load",
		Detail:   "The loader returned an error and no onError handler recovered it.",
		DocURL:   docBase + "r006",
	},
	"R007": {
		Category: CategoryAsync,
		Message:  "Async component timed out",
		Detail:   "The loader did not settle before the configured timeout. A result arriving later is discarded.",
		DocURL:   docBase + "r007",
	},
	"R008": {
		Category: CategoryEffect,
		Message:  "Reactive effect panicked",
		Detail:   "A panic escaped an effect function. The effect stays subscribed to whatever it read before the panic and will run again on the next change.",
		DocURL:   docBase + "r008",
	},
	"R009": {
		Category: CategoryScheduler,
		Message:  "Maximum recursive updates exceeded",
		Detail:   "A job kept re-queuing itself during a single flush. It is dropped until the next flush.",
		DocURL:   docBase + "r009",
	},
	"R010": {
		Category: CategoryUsage,
		Message:  "Setup render overrides definition render",
		Detail:   "Setup returned a render function while the definition also declares one. The render function returned by setup wins.",
		DocURL:   docBase + "r010",
	},
	"R011": {
		Category: CategoryScheduler,
		Message:  "Dispatch to scheduler failed",
		Detail:   "A background result could not be handed back to the scheduler, usually because its loop has stopped.",
		DocURL:   docBase + "r011",
	},
	"R012": {
		Category: CategoryEffect,
		Message:  "Component lifecycle panicked",
		Detail:   "A panic escaped BeforeCreate, Data, Setup or a lifecycle hook. A component whose creation panicked renders nothing and is not kept.",
		DocURL:   docBase + "r012",
	},

	// ============================================
	// Configuration Errors (C120-C139)
	// ============================================

	"C120": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No reconcile.json, reconcile.yaml or reconcile.toml was found in the directory.",
		DocURL:   docBase + "c120",
	},
	"C121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
		DocURL:   docBase + "c121",
	},
	"C122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or not recognized.",
		DocURL:   docBase + "c122",
	},
	"C123": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml, .yml or .toml.",
		DocURL:   docBase + "c123",
	},

	// ============================================
	// Protocol Errors (P060-P079)
	// ============================================

	"P060": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "A frame could not be decoded.",
		DocURL:   docBase + "p060",
	},
	"P061": {
		Category: CategoryProtocol,
		Message:  "Unknown host handle",
		Detail:   "A host operation referenced a handle that was never created or was already removed.",
		DocURL:   docBase + "p061",
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
