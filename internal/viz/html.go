// Package viz renders a classified patent portfolio as a standalone HTML
// report with Chart.js charts.
package viz

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/patentstack/patentstack/internal/report"
)

// ErrNoOfflineBundle means this binary carries no inline Chart.js bundle,
// so offline mode cannot produce a working report.
var ErrNoOfflineBundle = errors.New("no offline chart bundle in this build")

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title   string // Page title; empty uses a default
	Offline bool   // Whether to embed Chart.js inline
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Title: "Patent Portfolio Report"}
}

// GenerateHTML renders the summary as a self-contained HTML report.
func GenerateHTML(summary *report.Summary, opts HTMLOptions) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("summary cannot be nil")
	}
	if opts.Offline && chartJS == "" {
		return "", ErrNoOfflineBundle
	}
	if summary.Total == 0 {
		return generateEmptyHTML(), nil
	}

	title := opts.Title
	if title == "" {
		title = "Patent Portfolio Report"
	}

	chartJSON, err := buildChartData(summary).toJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     title,
		ScriptTag: template.HTML(buildScriptTag(opts.Offline)),
		ChartJSON: template.JS(chartJSON),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	ScriptTag template.HTML
	ChartJSON template.JS
}

// buildScriptTag returns either inline script or CDN reference.
func buildScriptTag(offline bool) string {
	if offline {
		return "<script>" + chartJS + "</script>"
	}
	return `<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>`
}

// generateEmptyHTML returns HTML for an empty portfolio state.
func generateEmptyHTML() string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Patent Portfolio - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
    .empty-state h2 {
      margin-bottom: 0.5em;
      color: #333;
    }
    .empty-state code {
      background: #e0e0e0;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No patent data</h2>
    <p>Your workspace doesn't have any patents yet.</p>
    <p>Fetch records using <code>patentstack fetch</code></p>
    <p>Classify them using <code>patentstack classify</code></p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  {{.ScriptTag}}
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 24px;
      background: #f5f5f5;
      color: #333;
    }
    h1 {
      margin: 0 0 4px 0;
      font-size: 22px;
    }
    .totals {
      color: #666;
      margin-bottom: 24px;
      font-size: 14px;
    }
    .grid {
      display: grid;
      grid-template-columns: 1fr 1fr;
      gap: 24px;
    }
    .card {
      background: white;
      border-radius: 6px;
      padding: 16px;
      box-shadow: 0 1px 4px rgba(0,0,0,0.08);
    }
    .card h2 {
      margin: 0 0 12px 0;
      font-size: 15px;
      color: #555;
    }
    .card.wide {
      grid-column: 1 / -1;
    }
    @media (max-width: 900px) {
      .grid { grid-template-columns: 1fr; }
    }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="totals" id="totals"></div>
  <div class="grid">
    <div class="card">
      <h2>Patents by category</h2>
      <canvas id="categoryChart"></canvas>
    </div>
    <div class="card">
      <h2>Top subcategories</h2>
      <canvas id="subcategoryChart"></canvas>
    </div>
    <div class="card wide">
      <h2>Companies by category</h2>
      <canvas id="companyChart"></canvas>
    </div>
    <div class="card wide">
      <h2>Patents per year</h2>
      <canvas id="yearChart"></canvas>
    </div>
  </div>
  <script>
    (function() {
      const data = {{.ChartJSON}};

      const palette = [
        '#4A90D9', '#E8923A', '#27AE60', '#9B59B6', '#E74C3C',
        '#1ABC9C', '#F1C40F', '#34495E', '#95A5A6', '#D35400'
      ];

      document.getElementById('totals').textContent =
        data.total + ' patents, ' + data.classified + ' classified, ' +
        data.unclassified + ' unclassified';

      new Chart(document.getElementById('categoryChart'), {
        type: 'pie',
        data: {
          labels: data.categoryLabels,
          datasets: [{
            data: data.categoryCounts,
            backgroundColor: palette
          }]
        }
      });

      new Chart(document.getElementById('subcategoryChart'), {
        type: 'bar',
        data: {
          labels: data.subcategoryLabels,
          datasets: [{
            label: 'patents',
            data: data.subcategoryCounts,
            backgroundColor: palette[0]
          }]
        },
        options: {
          indexAxis: 'y',
          plugins: { legend: { display: false } }
        }
      });

      new Chart(document.getElementById('companyChart'), {
        type: 'bar',
        data: {
          labels: data.companyLabels,
          datasets: (data.companyDatasets || []).map(function(ds, i) {
            return {
              label: ds.label,
              data: ds.data,
              backgroundColor: palette[i % palette.length]
            };
          })
        },
        options: {
          scales: {
            x: { stacked: true },
            y: { stacked: true }
          }
        }
      });

      new Chart(document.getElementById('yearChart'), {
        type: 'line',
        data: {
          labels: data.yearLabels,
          datasets: [{
            label: 'patents',
            data: data.yearCounts,
            borderColor: palette[0],
            backgroundColor: 'rgba(74, 144, 217, 0.15)',
            fill: true,
            tension: 0.2
          }]
        },
        options: {
          plugins: { legend: { display: false } }
        }
      });
    })();
  </script>
</body>
</html>`

// chartJS holds the inline Chart.js bundle for offline reports. Release
// builds set it via -ldflags -X or a go:embed overlay; when empty,
// GenerateHTML rejects offline mode with ErrNoOfflineBundle.
var chartJS string
