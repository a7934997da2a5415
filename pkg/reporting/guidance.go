package reporting

// VerificationSteps are the manual checks printed after every run.
// The tool makes no pass/fail determination of its own.
var VerificationSteps = []string{
	"Check target window console for JavaScript errors",
	"Look for alert dialogs or unexpected behavior",
	"Inspect network requests for malformed JSON",
	"Check for prototype pollution: Object.prototype.isHacked",
	"Monitor application logs for parsing errors",
}

// Recommendations are the remediation hints printed after every run
var Recommendations = []string{
	"Implement proper JSON schema validation",
	"Sanitize all user inputs before JSON parsing",
	"Use JSON.parse() with reviver function for filtering",
	"Implement Content Security Policy (CSP)",
	"Avoid eval() and Function() constructors",
}
