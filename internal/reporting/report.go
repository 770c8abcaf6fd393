package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"macwatch/internal/host"
	"macwatch/internal/inspect"
)

// Source provides the session data to report on.
type Source interface {
	Hosts() []host.Record
	Alerts(limit int) []inspect.Alert
	Stats() inspect.Stats
}

// GenerateSessionReport writes a report of the session into dir and returns
// the file path. Currently supports "html" format.
func GenerateSessionReport(src Source, format, dir string) (string, error) {
	if format != "html" {
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("macwatch_%s.html", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.WriteString(renderHTML(src, timestamp)); err != nil {
		return "", err
	}
	return filename, nil
}

func renderHTML(src Source, timestamp string) string {
	stats := src.Stats()
	hosts := src.Hosts()
	alerts := src.Alerts(0)

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>macwatch Session Report - %s</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .alert { color: #d9534f; font-weight: bold; }
    </style>
</head>
<body>
    <h1>macwatch Session Report</h1>
    <div class="summary">
        <p><strong>Date:</strong> %s</p>
        <p><strong>Frames:</strong> %d (%d ignored)</p>
        <p><strong>Hosts:</strong> %d tracked, %d seen, %d expired</p>
        <p><strong>Rogue routers:</strong> %d</p>
    </div>

    <h2>Hosts</h2>
    <table>
        <thead>
            <tr>
                <th>MAC</th>
                <th>IP Addresses</th>
                <th>First Seen</th>
                <th>Last Seen</th>
                <th>Packets</th>
                <th>Data Transferred</th>
                <th>Router</th>
            </tr>
        </thead>
        <tbody>
`, timestamp, time.Now().Format(time.RFC1123),
		stats.Frames, stats.Ignored, stats.Tracked, stats.NewHosts, stats.Expired, stats.RogueRouters)

	if len(hosts) == 0 {
		b.WriteString("            <tr><td colspan=\"7\">No hosts tracked.</td></tr>\n")
	}
	for _, h := range hosts {
		router := ""
		if h.Router {
			router = "yes"
		}
		fmt.Fprintf(&b, "            <tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>\n",
			h.MAC, html.EscapeString(strings.Join(h.IPStrings(), ", ")),
			h.FirstSeen.Format("15:04:05"), h.LastSeen.Format("15:04:05"),
			h.Packets, formatBytes(h.Bytes), router)
	}

	b.WriteString(`        </tbody>
    </table>

    <h2>Alerts</h2>
    <table>
        <thead>
            <tr>
                <th>Time</th>
                <th>Type</th>
                <th>Source</th>
                <th>Message</th>
            </tr>
        </thead>
        <tbody>
`)

	if len(alerts) == 0 {
		b.WriteString("            <tr><td colspan=\"4\">No alerts triggered during this session.</td></tr>\n")
	}
	for _, a := range alerts {
		fmt.Fprintf(&b, "            <tr><td>%s</td><td class=\"alert\">%s</td><td>%s</td><td>%s</td></tr>\n",
			a.Timestamp.Format("15:04:05"), a.Type, a.Source, html.EscapeString(a.Message))
	}

	b.WriteString(`        </tbody>
    </table>
</body>
</html>`)
	return b.String()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
