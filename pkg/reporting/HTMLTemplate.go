package reporting

import (
	"fmt"
	"html/template"
	"strings"
)

func (rg *ReportGenerator) initializeTemplate() error {
	htmlTemplate := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>jsonraven Report {{.Summary.RunID}}</title>
    <style>
        :root {
            --primary-color: #2c3e50;
            --secondary-color: #3498db;
            --success-color: #27ae60;
            --warning-color: #f39c12;
            --danger-color: #e74c3c;
            --light-bg: #f8f9fa;
            --border-color: #dee2e6;
            --text-secondary: #6c757d;
            --border-radius: 8px;
        }
        body {
            font-family: 'Inter', 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            line-height: 1.6;
            margin: 0;
            background: var(--light-bg);
            color: var(--primary-color);
        }
        .container { max-width: 1100px; margin: 0 auto; padding: 2rem; }
        .header { background: var(--primary-color); color: white; padding: 1.5rem 2rem; border-radius: var(--border-radius); }
        .meta-item { display: inline-block; margin-right: 1.5rem; color: #dfe6e9; }
        .section { background: white; margin-top: 1.5rem; padding: 1.5rem 2rem; border-radius: var(--border-radius); border: 1px solid var(--border-color); }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid var(--border-color); vertical-align: top; }
        td.payload { font-family: monospace; word-break: break-all; font-size: 0.85rem; }
        .status-sent { color: var(--success-color); font-weight: bold; }
        .status-error { color: var(--danger-color); font-weight: bold; }
        .warning { color: var(--warning-color); }
        .footer { text-align: center; color: var(--text-secondary); margin-top: 2rem; font-size: 0.9rem; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>JSON Injection Delivery Report</h1>
            <div class="meta-item">{{.GeneratedAt.Format "2006-01-02 15:04:05"}}</div>
            <div class="meta-item">{{.Summary.RunID}}</div>
            <div class="meta-item">{{.Summary.Target}}</div>
            <div class="meta-item">param: {{.Summary.Param}}</div>
        </div>

        <div class="section">
            <h2>Test Summary</h2>
            <p>Delivered: <strong>{{.Sent}}</strong> &middot; Errors: <strong>{{.Failed}}</strong></p>
            <table>
                <tr><th>#</th><th>Name</th><th>Status</th><th>Timestamp</th><th>Payload</th><th>Error</th></tr>
                {{range $i, $r := .Summary.Results}}
                <tr>
                    <td>{{$i}}</td>
                    <td>{{$r.Name}}</td>
                    <td class="status-{{$r.Status | lower}}">{{$r.Status}}</td>
                    <td>{{$r.Timestamp}}</td>
                    <td class="payload">{{$r.Payload}}</td>
                    <td>{{$r.Error}}</td>
                </tr>
                {{end}}
            </table>
        </div>

        <div class="section">
            <h2 class="warning">Manual Verification Steps</h2>
            <ol>{{range .VerificationSteps}}<li>{{.}}</li>{{end}}</ol>
        </div>

        <div class="section">
            <h2>Remediation Recommendations</h2>
            <ul>{{range .Recommendations}}<li>{{.}}</li>{{end}}</ul>
        </div>

        <div class="footer">
            <div><strong>Report generated by jsonraven v{{.JSONRavenVersion}}</strong></div>
            <div>Use only on authorized targets | {{.GeneratedAt.Format "January 2, 2006"}}</div>
        </div>
    </div>
</body>
</html>`

	funcMap := template.FuncMap{
		"lower": func(v interface{}) string { return strings.ToLower(fmt.Sprint(v)) },
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	rg.template = tmpl
	return nil
}
