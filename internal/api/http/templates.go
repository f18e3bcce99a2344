package api

import "html/template"

// Server-rendered pages. The tool runs inside a platform iframe, so these
// stay deliberately plain.

var landingTmpl = template.Must(template.New("landing").Parse(`<!doctype html>
<html>
<head><title>LTI Tool</title></head>
<body>
<h1>Welcome, {{.Name}}</h1>
<p>Course: {{.Course}}</p>
</body>
</html>
`))

var assignmentTmpl = template.Must(template.New("assignment").Parse(`<!doctype html>
<html>
<head><title>{{.Assignment.Title}}</title></head>
<body>
<h1>{{.Assignment.Title}}</h1>
{{if .Assignment.Description}}<p>{{.Assignment.Description}}</p>{{end}}

{{if .CanEdit}}
<h2>Settings</h2>
<form action="/assignment/edit" method="POST">
  <label>Title <input name="title" value="{{.Assignment.Title}}"></label><br>
  <label>Description <textarea name="description">{{.Assignment.Description}}</textarea></label><br>
  <label><input type="checkbox" name="allow_multiple" value="true" {{if .Assignment.AllowMultiple}}checked{{end}}> Allow multiple submissions</label><br>
  <button type="submit">Save</button>
</form>
{{end}}

<h2>Submissions</h2>
{{range .Submissions}}
<div>
  <p><strong>{{.UserID}}</strong>{{if .Grade}} (grade {{.Grade}}){{end}}</p>
  <pre>{{.Body}}</pre>
  {{if .Comment}}<p><em>{{.Comment}}</em></p>{{end}}
  {{if $.CanGrade}}
  <form action="/submissions/grade" method="POST">
    <input type="hidden" name="submission_id" value="{{.ID}}">
    <label>Grade <input name="grade" type="number" step="0.1"></label>
    <label>Comment <input name="comment"></label>
    <button type="submit">Grade</button>
  </form>
  {{end}}
</div>
{{else}}
<p>No submissions yet.</p>
{{end}}

{{if .CanSubmit}}
<h2>Submit</h2>
<form action="/submissions" method="POST">
  <textarea name="body" required></textarea><br>
  <button type="submit">Submit</button>
</form>
{{end}}
</body>
</html>
`))

var deeplinkTmpl = template.Must(template.New("deeplink").Parse(`<!doctype html>
<html>
<head><title>Create assignment</title></head>
<body>
<h1>Create assignment</h1>
<form action="/deeplink/submit" method="POST">
  <input type="hidden" name="return_url" value="{{.ReturnURL}}">
  <input type="hidden" name="data" value="{{.Data}}">
  <label>Title <input name="title" required></label><br>
  <label>Description <textarea name="description"></textarea></label><br>
  <label><input type="checkbox" name="allow_multiple" value="true"> Allow multiple submissions</label><br>
  <button type="submit">Add to course</button>
</form>
</body>
</html>
`))

// autoSubmitTmpl posts the signed deep-linking response token back to the
// platform's return URL without user interaction.
var autoSubmitTmpl = template.Must(template.New("autosubmit").Parse(`<!doctype html>
<html>
<head><title>Returning to course…</title></head>
<body onload="document.forms[0].submit()">
<form action="{{.ReturnURL}}" method="POST">
  <input type="hidden" name="JWT" value="{{.JWT}}">
  <noscript><button type="submit">Continue</button></noscript>
</form>
</body>
</html>
`))
