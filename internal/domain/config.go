package domain

import "strings"

// EditorScriptURL derives the editor bootstrap script location from the
// document server address.
func EditorScriptURL(address string) string {
	return strings.TrimSuffix(address, "/") + "/web-apps/apps/api/documents/api.js"
}

// Document describes the file the editor should load.
type Document struct {
	FileType string `json:"fileType"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// EditorUser identifies the editing user inside the embedded editor.
type EditorUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EditorConfig carries the editor-side settings, including the callback URL
// the document server will post save/status notifications to.
type EditorConfig struct {
	CallbackURL string     `json:"callbackUrl"`
	User        EditorUser `json:"user"`
	Mode        string     `json:"mode"`
}

// Config is the outbound payload handed to the embedded editor. Token holds
// a signature computed over the rest of the structure with the per-session
// secret; the document server rejects configs whose signature does not match
// its own recomputation, so Token must be recomputed whenever any other
// field changes.
type Config struct {
	Document     Document     `json:"document"`
	DocumentType string       `json:"documentType"`
	EditorConfig EditorConfig `json:"editorConfig"`
	Attachment   string       `json:"attachment"`
	Token        string       `json:"token,omitempty"`
}
