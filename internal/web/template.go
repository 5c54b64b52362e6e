package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/pad-input/internal/buttons"
	"github.com/sweeney/pad-input/internal/logic"
	"github.com/sweeney/pad-input/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"hex": func(v int) string {
		return fmt.Sprintf("0x%04X", v)
	},
	"controller": func(mask int) string {
		return buttons.Describe(buttons.Decode(mask, false))
	},
	"describe": func(e *logic.Event) string {
		return buttons.Describe(e.Buttons())
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Pad Input</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected { color: green; }
.disconnected { color: red; }
.empty { color: #888; }
</style>
</head>
<body>
<h1>Pad Input</h1>

<h2>Input</h2>
<table>
<tr><th>Controller</th><td id="controller">{{hex .State.LastController}} ({{controller .State.LastController}})</td></tr>
<tr><th>Keyboard</th><td id="keyboard">{{hex .State.LastKeyboard}}</td></tr>
<tr><th>Last event</th><td id="last-event">{{with .LastEvent}}{{.Source}} {{.Edge}} {{describe .}}{{if .Inferred}} (inferred){{end}}{{else}}<span class="empty">none</span>{{end}}</td></tr>
<tr><th>History</th><td>{{range $i, $v := .State.History}}{{if $i}} {{end}}{{hex $v}}{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Keyboard pressed</th><td>{{.State.Counts.KeyboardPressed}}</td></tr>
<tr><th>Keyboard released</th><td>{{.State.Counts.KeyboardReleased}}</td></tr>
<tr><th>Controller pressed</th><td>{{.State.Counts.ControllerPressed}}</td></tr>
<tr><th>Controller released</th><td>{{.State.Counts.ControllerReleased}}</td></tr>
<tr><th>Inferred releases</th><td>{{.State.Counts.InferredReleases}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{else}}<tr><th>MQTT</th><td class="empty">disabled</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05 UTC"}}</td></tr>
<tr><th>Debug</th><td>{{if .Debug}}on{{else}}off{{end}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Sources</th><td>{{if .Config.GPIO}}gpio {{end}}{{if .Config.Keyboard}}keyboard{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">Metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// The template needs Uptime as a field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
