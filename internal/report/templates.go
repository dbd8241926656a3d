package report

import "html/template"

const (
	bannerStart = "<!-- pixel-banner -->"
	bannerEnd   = "<!-- /pixel-banner -->"
)

// bannerTemplate renders the block inserted after the report marker. The
// comment delimiters are added outside the template since html/template
// strips comments.
// The script flags the banner once the report is older than data-stale-after.
//
//nolint:gochecknoglobals // parsed once
var bannerTemplate = template.Must(template.New("banner").Parse(`
<style>
.pixel-banner { font-family: sans-serif; padding: 8px 16px; background: #eaf3ff; border-bottom: 1px solid #36c; }
.pixel-banner p { margin: 4px 0; }
.pixel-banner--stale { background: #fee7e6; border-color: #d33; }
.pixel-banner--stale .pixel-banner__stale { display: inline; }
.pixel-banner__stale { display: none; font-weight: bold; color: #d33; }
</style>
<div id="pixel-banner" class="pixel-banner" data-timestamp="{{.Millis}}" data-stale-after="{{.StaleMillis}}">
<p><strong>{{.Group}}</strong>: reference <code>{{.Reference}}</code>{{.Description}} compared with test <code>{{.Test}}</code></p>
<p>Generated {{.Generated}}{{if .RunID}} (run {{.RunID}}){{end}} <span class="pixel-banner__stale">This report is out of date.</span></p>
</div>
<script>
(function () {
	var banner = document.getElementById('pixel-banner');
	if (!banner) { return; }
	var created = Number(banner.getAttribute('data-timestamp'));
	var staleAfter = Number(banner.getAttribute('data-stale-after'));
	if (Date.now() - created > staleAfter) {
		banner.className += ' pixel-banner--stale';
	}
}());
</script>
`))

// indexTemplate renders the batch summary page.
//
//nolint:gochecknoglobals // parsed once
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Pixel batch report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
td, th { padding: 4px 12px; border-bottom: 1px solid #ccc; text-align: left; }
.status-ok { color: #14866d; }
.status-diffs { color: #ac6600; }
.status-failed { color: #d33; }
</style>
</head>
<body>
<h1>Pixel batch report</h1>
<p>Generated {{.Generated}}</p>
<table>
<thead><tr><th>Group</th><th>Status</th><th>Report</th></tr></thead>
<tbody>
{{- range .Entries}}
<tr>
<td>{{.Name}}</td>
<td class="status-{{.Status}}">{{.Status}}{{if .Error}}: {{.Error}}{{end}}</td>
<td>{{if .Link}}<a href="{{.Link}}">{{.Group}}</a>{{else}}-{{end}}</td>
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

type bannerData struct {
	Group       string
	Reference   string
	Description string
	Test        string
	Generated   string
	RunID       string
	Millis      int64
	StaleMillis int64
}

type indexData struct {
	Generated string
	Entries   []indexRow
}

type indexRow struct {
	Group  string
	Name   string
	Status string
	Error  string
	Link   string
}
