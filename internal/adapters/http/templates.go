package http

import "html/template"

var editorTemplate = template.Must(template.New("editor").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    html, body { margin: 0; padding: 0; height: 100%; overflow: hidden; }
    #editor-placeholder { height: 100%; }
  </style>
</head>
<body>
  <div id="editor-placeholder"></div>
  <script type="text/javascript" src="{{.APIScriptURL}}"></script>
  <script type="text/javascript">
    window.docEditor = new DocsAPI.DocEditor("editor-placeholder", {{.Config}});
  </script>
</body>
</html>
`))

var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Something went wrong</title>
</head>
<body>
  <h1>Something went wrong</h1>
  <p>The document could not be opened. Close this window and try again.</p>
</body>
</html>
`))

type editorPageData struct {
	Title        string
	APIScriptURL string
	// Config is the signed editor config as a JSON literal, injected into
	// the bootstrap script verbatim.
	Config template.JS
}
