// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jeranaias/bazi-report-tui/internal/report"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports documents to a standalone HTML page with embedded CSS.
type HTMLExporter struct {
	options  *Options
	markdown goldmark.Markdown
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options: opts,
		// SECURITY: goldmark drops raw HTML unless WithUnsafe is set, so
		// service text cannot inject markup.
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Export converts a document to HTML.
func (e *HTMLExporter) Export(doc report.Document) ([]byte, error) {
	if doc.GeneratedAt.IsZero() {
		return nil, ErrEmptyDocument
	}

	var sb strings.Builder
	title := html.EscapeString(doc.Title())

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"zh-CN\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", title))
	sb.WriteString("    <meta name=\"generator\" content=\"bazi\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", doc.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.theme()))
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString(e.renderHeader(doc, title))

	sb.WriteString("        <main class=\"report\">\n")
	if len(doc.Blocks) == 0 {
		sb.WriteString(fmt.Sprintf("            <p class=\"empty\">%s</p>\n", html.EscapeString(report.NoResultsMessage)))
	}
	for _, b := range doc.Blocks {
		section, err := e.renderBlock(b)
		if err != nil {
			return nil, fmt.Errorf("render section %s: %w", b.ID, err)
		}
		sb.WriteString(section)
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>由 <strong>bazi</strong> 导出于 %s</p>\n",
		formatTimestamp(e.options.now())))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString(e.getScript())
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(doc report.Document, title string) string {
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", title))
	sb.WriteString("            <div class=\"metadata\">\n")
	if e.options.IncludeMetadata && doc.Request != nil {
		r := doc.Request
		for _, item := range [][2]string{
			{"出生时间", r.Birth.String()},
			{"出生地点", r.Location},
			{"分析模式", r.Mode.Label()},
		} {
			sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>%s：</strong>%s</span>\n",
				item[0], html.EscapeString(item[1])))
		}
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>生成时间：</strong>%s</span>\n",
		formatTimestamp(doc.GeneratedAt)))
	sb.WriteString("                <button class=\"theme-toggle\" onclick=\"toggleTheme()\" title=\"切换主题\">◐</button>\n")
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

// renderBlock converts one block body from Markdown.
func (e *HTMLExporter) renderBlock(b report.Block) (string, error) {
	var body bytes.Buffer
	if err := e.markdown.Convert([]byte(b.Body), &body); err != nil {
		return "", err
	}

	class := "block"
	if b.Degraded {
		class += " degraded"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("            <section class=\"%s\" id=\"%s\">\n", class, html.EscapeString("section-"+b.ID)))
	sb.WriteString(fmt.Sprintf("                <h2>%s</h2>\n", html.EscapeString(b.Title)))
	sb.WriteString("                <div class=\"content\">\n")
	sb.WriteString(body.String())
	sb.WriteString("                </div>\n")
	sb.WriteString("            </section>\n")
	return sb.String(), nil
}

func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "PingFang SC", "Microsoft YaHei", "Segoe UI", sans-serif;
            --font-mono: "SF Mono", "Sarasa Mono SC", "Noto Sans Mono CJK SC", monospace;
        }

        /* Dark theme (default) */
        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --border-color: #414868;
            --code-bg: #1a1b26;
            --accent: #e0af68;
            --accent-red: #f7768e;
        }

        /* Light theme */
        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #fbf8f3;
            --bg-tertiary: #efe6d8;
            --text-primary: #2b2118;
            --text-secondary: #6b5b4b;
            --border-color: #e1d6c4;
            --code-bg: #f6f1e9;
            --accent: #a0522d;
            --accent-red: #c0392b;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.7;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 {
            font-size: 28px;
            margin-bottom: 16px;
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-secondary);
            align-items: center;
        }

        .theme-toggle {
            margin-left: auto;
            background: var(--bg-secondary);
            color: var(--text-primary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            padding: 4px 12px;
            cursor: pointer;
            font-size: 18px;
        }

        .report {
            padding: 24px 32px;
        }

        .block {
            margin-bottom: 28px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid var(--accent);
            background: var(--bg-primary);
        }

        .block.degraded {
            border-left-color: var(--accent-red);
            opacity: 0.8;
        }

        .block h2 {
            font-size: 20px;
            margin-bottom: 12px;
            color: var(--accent);
        }

        .content h4 { margin: 16px 0 8px; }
        .content h5 { margin: 12px 0 6px; }
        .content p, .content ul, .content ol { margin-bottom: 10px; }
        .content ul, .content ol { padding-left: 24px; }

        .content blockquote {
            border-left: 3px solid var(--border-color);
            padding-left: 12px;
            color: var(--text-secondary);
        }

        .content pre {
            background: var(--code-bg);
            padding: 12px;
            border-radius: 6px;
            overflow-x: auto;
            font-family: var(--font-mono);
            line-height: 1.4;
        }

        .content table {
            border-collapse: collapse;
            margin-bottom: 12px;
        }

        .content th, .content td {
            border: 1px solid var(--border-color);
            padding: 6px 12px;
            text-align: center;
        }

        .empty {
            text-align: center;
            color: var(--text-secondary);
        }

        .footer {
            padding: 16px 32px;
            font-size: 13px;
            color: var(--text-secondary);
            border-top: 1px solid var(--border-color);
        }

        @media print {
            .theme-toggle { display: none; }
        }
    </style>
`
}

func (e *HTMLExporter) getScript() string {
	return `    <script>
        function toggleTheme() {
            const body = document.body;
            if (body.classList.contains('dark-theme')) {
                body.classList.remove('dark-theme');
                body.classList.add('light-theme');
                localStorage.setItem('theme', 'light');
            } else {
                body.classList.remove('light-theme');
                body.classList.add('dark-theme');
                localStorage.setItem('theme', 'dark');
            }
        }

        // Load saved theme preference
        document.addEventListener('DOMContentLoaded', function() {
            const savedTheme = localStorage.getItem('theme');
            if (savedTheme) {
                document.body.classList.remove('dark-theme', 'light-theme');
                document.body.classList.add(savedTheme + '-theme');
            }
        });
    </script>
`
}
