// internal/report/template.go
package report

import "html/template"

var reportTemplate = template.Must(template.New("eval-report").Parse(reportTemplateHTML))

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <style>
    :root {
      --primary: #334155;
      --secondary: #64748B;
      --accent: #3B82F6;
      --light: #F1F5F9;
      --background: #FFFFFF;
      --text: #0F172A;
      --border: #E2E8F0;
    }
    body {
      background-color: var(--light);
      color: var(--text);
    }
    .navbar-dark {
      background-color: var(--primary) !important;
    }
    .card {
      border: 1px solid var(--border);
      background-color: var(--background);
    }
    .table thead th {
      background-color: var(--light);
      color: var(--text);
      border-color: var(--border);
    }
    .table#resultsTable>tbody>tr>td.top-performer {
      background-color: #DBEAFE;
      font-weight: 600;
    }
    .chart-card {
      background: var(--background);
      border-radius: 16px;
      padding: 1.5rem;
      box-shadow: 0 1px 3px rgba(15, 23, 42, 0.1);
      border: 1px solid var(--border);
    }
    .chart-title {
      font-size: 1.5rem;
      font-weight: 700;
      margin-bottom: 0.25rem;
    }
    .chart-subtitle {
      color: var(--secondary);
      margin-bottom: 1.5rem;
    }
    .chart-canvas {
      position: relative;
      height: 420px;
    }
  </style>
</head>
<body>
  <nav class="navbar navbar-dark">
    <div class="container-fluid">
      <span class="navbar-brand mb-0 h1">{{ .Title }}</span>
      <span class="text-light">Experiment: {{ .Experiment }} &middot; Generated: {{ .GeneratedAt }}</span>
    </div>
  </nav>
  <main class="container-fluid my-4">
    <section>
      <div class="card shadow-sm">
        <div class="card-header bg-white">
          <h5 class="mb-0">Model Comparison</h5>
        </div>
        <div class="card-body">
          <div class="table-responsive">
            <table class="table table-striped table-hover table-bordered table-sm" id="resultsTable">
              <thead>
                <tr>
                  <th>#</th>
                  <th>Model</th>
                  {{- range .Tasks }}
                  <th>{{ . }}</th>
                  {{- end }}
                  <th>Average</th>
                </tr>
              </thead>
              <tbody>
                {{- range .Rows }}
                <tr>
                  <td>{{ .Rank }}</td>
                  <td{{ if .Top }} class="top-performer"{{ end }}>{{ .Model }}</td>
                  {{- range .Cells }}
                  <td>{{ . }}</td>
                  {{- end }}
                  <td><b>{{ .Average }}</b></td>
                </tr>
                {{- end }}
              </tbody>
            </table>
          </div>
        </div>
      </div>
    </section>

    <section class="mt-4">
      <div class="card shadow-sm chart-card">
        <div class="card-body">
          <div class="chart-title">Scores by Task</div>
          <div class="chart-subtitle">Higher is better. Missing tasks are left blank.</div>
          <div class="chart-canvas">
            <canvas id="scoresChart" aria-label="Scores by task chart" role="img"></canvas>
          </div>
        </div>
      </div>
    </section>
    {{- if .ErrorLogs }}

    <section class="mt-4">
      <div class="card shadow-sm">
        <div class="card-header bg-white">
          <h5 class="mb-0">Error Logs</h5>
        </div>
        <ul class="list-group list-group-flush" id="errorLogs">
          {{- range .ErrorLogs }}
          <li class="list-group-item"><a href="{{ .Href }}">{{ .Name }}</a></li>
          {{- end }}
        </ul>
      </div>
    </section>
    {{- end }}
    {{- if .CallStats }}

    <section class="mt-4">
      <div class="card shadow-sm">
        <div class="card-header bg-white">
          <h5 class="mb-0">Model Calls</h5>
        </div>
        <div class="card-body">
          <table class="table table-sm table-bordered" id="callStatsTable">
            <thead>
              <tr><th>Model</th><th>Calls</th><th>Failures</th><th>Mean latency (ms)</th><th>Max latency (ms)</th></tr>
            </thead>
            <tbody>
              {{- range .CallStats }}
              <tr><td>{{ .Model }}</td><td>{{ .Calls }}</td><td>{{ .Failures }}</td><td>{{ .MeanLatency }}</td><td>{{ .MaxLatency }}</td></tr>
              {{- end }}
            </tbody>
          </table>
        </div>
      </div>
    </section>
    {{- end }}
  </main>

  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.2/dist/chart.umd.min.js"></script>
  <script>
    var chartData = {{ .ChartJSON }};
  </script>
  <script>
    (function() {
      var palette = ['#3B82F6', '#10B981', '#F59E0B', '#8B5CF6', '#EF4444', '#64748B'];
      var canvas = document.getElementById('scoresChart');
      if (!canvas || !chartData.models.length) {
        return;
      }
      new Chart(canvas, {
        type: 'bar',
        data: {
          labels: chartData.models,
          datasets: chartData.datasets.map(function(dataset, index) {
            return {
              label: dataset.label,
              data: dataset.data,
              backgroundColor: palette[index % palette.length]
            };
          })
        },
        options: {
          responsive: true,
          maintainAspectRatio: false,
          scales: {
            y: { beginAtZero: true, suggestedMax: 1 }
          }
        }
      });
    })();
  </script>
</body>
</html>
`
