package errors

import "sort"

// Registered error codes.
const (
	// Routing
	CodeNoHandler      = "erebus.route.no_handler"
	CodeHandlerFailed  = "erebus.route.handler_error"
	CodeNoMatch        = "erebus.route.no_matching_route_or_default"
	CodeRouterError    = "erebus.router.error"
	CodeAlreadyStarted = "erebus.router.already_started"
	CodeInvalidPattern = "erebus.route.invalid_pattern"

	// Callbacks
	CodeInvalidFunction = "erebus.handler.trigger.invalid_function"
	CodeFunctionError   = "erebus.handlers.trigger.function_error"

	// Controller
	CodeControllerHandler = "erebus.controller.handler_error"
	CodeMissingFragment   = "erebus.controller.missing_fragment"
	CodeInvalidFragment   = "erebus.controller.invalid_fragment"
	CodeFragmentLoad      = "erebus.controller.load_error"

	// Transport
	CodeNullURL           = "erebus.http.null_url"
	CodeConnectionRefused = "erebus.http.connection_refused"
	CodeHTTPStatus        = "erebus.http.error"
	CodeJSONParse         = "erebus.http.json_parse_error"
	CodeUnsupportedScheme = "erebus.http.unsupported_scheme"
	CodeInvalidURL        = "erebus.http.invalid_url"

	// Elements
	CodeUnknownElementID = "erebus.element.unknown_element_id"
	CodeUnknownSelector  = "erebus.element.unknown_selector"
	CodeDetached         = "erebus.element.detached"

	// Configuration
	CodeConfigInvalid  = "erebus.config.invalid"
	CodeConfigNotFound = "erebus.config.not_found"
	CodeConfigPort     = "erebus.config.invalid_port"
	CodeConfigRoute    = "erebus.config.invalid_route"

	// CLI
	CodeTemplateNotFound = "erebus.cli.template_not_found"
	CodeDirExists        = "erebus.cli.directory_exists"
	CodeTemplateInvalid  = "erebus.cli.template_invalid"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Routing
	// ============================================

	CodeNoHandler: {
		Category: CategoryRouting,
		Message:  "No handler bound to route",
		Detail:   "The matched route was registered without a handler function.",
	},
	CodeHandlerFailed: {
		Category: CategoryRouting,
		Message:  "Route handler failed",
	},
	CodeNoMatch: {
		Category: CategoryRouting,
		Message:  "No matching route or default",
	},
	CodeRouterError: {
		Category: CategoryRouting,
		Message:  "Routing failed",
	},
	CodeAlreadyStarted: {
		Category: CategoryRouting,
		Message:  "Router already started",
	},
	CodeInvalidPattern: {
		Category: CategoryRouting,
		Message:  "Invalid route pattern",
	},

	// ============================================
	// Callbacks
	// ============================================

	CodeInvalidFunction: {
		Category: CategoryCallback,
		Message:  "Value is not a function",
	},
	CodeFunctionError: {
		Category: CategoryCallback,
		Message:  "Callback failed",
	},

	// ============================================
	// Controller
	// ============================================

	CodeControllerHandler: {
		Category: CategoryCallback,
		Message:  "Controller handler failed",
	},
	CodeMissingFragment: {
		Category: CategoryConfig,
		Message:  "Controller has no fragment",
	},
	CodeInvalidFragment: {
		Category: CategoryConfig,
		Message:  "Invalid fragment",
	},
	CodeFragmentLoad: {
		Category: CategoryTransport,
		Message:  "Fragment could not be loaded",
	},

	// ============================================
	// Transport
	// ============================================

	CodeNullURL: {
		Category: CategoryTransport,
		Message:  "Empty URL",
	},
	CodeConnectionRefused: {
		Category: CategoryTransport,
		Message:  "Connection refused",
	},
	CodeHTTPStatus: {
		Category: CategoryTransport,
		Message:  "Unexpected HTTP status",
	},
	CodeJSONParse: {
		Category: CategoryTransport,
		Message:  "Response is not valid JSON",
	},
	CodeUnsupportedScheme: {
		Category: CategoryTransport,
		Message:  "Unsupported URL scheme",
	},
	CodeInvalidURL: {
		Category: CategoryTransport,
		Message:  "Invalid URL",
	},

	// ============================================
	// Elements
	// ============================================

	CodeUnknownElementID: {
		Category: CategoryElement,
		Message:  "Unknown element id",
	},
	CodeUnknownSelector: {
		Category: CategoryElement,
		Message:  "Unknown selector",
	},
	CodeDetached: {
		Category: CategoryElement,
		Message:  "Document is no longer attached",
	},

	// ============================================
	// Configuration
	// ============================================

	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The erebus configuration file is malformed.",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	CodeConfigPort: {
		Category: CategoryConfig,
		Message:  "Invalid port number",
	},
	CodeConfigRoute: {
		Category: CategoryConfig,
		Message:  "Invalid route definition",
	},

	// ============================================
	// CLI
	// ============================================

	CodeTemplateNotFound: {
		Category: CategoryCLI,
		Message:  "Site template not found",
	},
	CodeDirExists: {
		Category: CategoryCLI,
		Message:  "Directory already contains a site",
	},
	CodeTemplateInvalid: {
		Category: CategoryCLI,
		Message:  "Site template failed",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for a code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
