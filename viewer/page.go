package viewer

import (
	"fmt"
	"html/template"
	"time"
)

var pageFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"nsdate": func(ns int64) string {
		return time.Unix(0, ns).Format("2006-01-02 15:04")
	},
	"avg": func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	},
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background: #111; color: #ddd; font-family: monospace; margin: 2em; }
h1, h2 { color: #4ade80; }
table { border-collapse: collapse; margin-bottom: 2em; }
td, th { padding: 0.2em 0.8em; border-bottom: 1px solid #333; text-align: left; }
#board { line-height: 1; font-size: 14px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>

<h2>Top {{len .Leaderboard}}</h2>
<table id="leaderboard">
<thead><tr><th>#</th><th>Name</th><th>Score</th><th>Mode</th><th>Date</th></tr></thead>
<tbody>
{{- range .Leaderboard}}
<tr><td class="rank">{{.Rank}}</td><td class="name">{{.Name}}</td><td class="score">{{.Score}}</td><td class="difficulty">{{.Difficulty}}</td><td class="date">{{date .Date}}</td></tr>
{{- else}}
<tr class="empty"><td colspan="5">No scores yet</td></tr>
{{- end}}
</tbody>
</table>

<h2>History</h2>
<p id="total-runs">{{.Stats.Runs}} runs</p>
<table id="stats">
<thead><tr><th>Mode</th><th>Runs</th><th>Best</th><th>Avg score</th><th>Avg turns</th><th>Items</th></tr></thead>
<tbody>
{{- range .Stats.Difficulties}}
<tr><td class="difficulty">{{.Difficulty}}</td><td class="runs">{{.Runs}}</td><td class="best">{{.Best}}</td><td>{{avg .AvgScore}}</td><td>{{avg .AvgTurns}}</td><td>{{.Items}}</td></tr>
{{- end}}
</tbody>
</table>

<table id="runs">
<thead><tr><th>Ended</th><th>Mode</th><th>Score</th><th>Turns</th><th>Cause</th></tr></thead>
<tbody>
{{- range .Runs}}
<tr><td>{{nsdate .EndedNs}}</td><td>{{.Difficulty}}</td><td class="score">{{.Score}}</td><td>{{.Turns}}</td><td class="cause">{{.Cause}}</td></tr>
{{- end}}
</tbody>
</table>

{{- if .Live}}
<h2>Live</h2>
<p id="status">waiting</p>
<pre id="board"></pre>
<script>
(function () {
  var board = document.getElementById("board");
  var status = document.getElementById("status");
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = function (ev) {
    var f = JSON.parse(ev.data);
    var rows = [];
    for (var y = 0; y < f.size; y++) { rows.push(new Array(f.size + 1).join(".").split("")); }
    rows[f.food.y][f.food.x] = "*";
    f.snake.forEach(function (c, i) {
      if (c.y >= 0 && c.y < f.size && c.x >= 0 && c.x < f.size) { rows[c.y][c.x] = i === 0 ? "@" : "o"; }
    });
    board.textContent = rows.map(function (r) { return r.join(" "); }).join("\n");
    status.textContent = f.status + "  score " + f.score + "  best " + f.high_score + "  " + f.difficulty;
  };
  ws.onclose = function () { status.textContent = "disconnected"; };
})();
</script>
{{- end}}
<footer>generated {{.Generated.Format "15:04:05"}}</footer>
</body>
</html>
`
