package domain

import (
	"path/filepath"
	"strings"
)

const (
	DocTypeWord  = "word"
	DocTypeCell  = "cell"
	DocTypeSlide = "slide"
)

// editExtensions are the formats the editor can modify losslessly.
var editExtensions = map[string]string{
	"docx": DocTypeWord,
	"xlsx": DocTypeCell,
	"pptx": DocTypeSlide,
}

// viewExtensions are all formats the editor can open read-only.
var viewExtensions = map[string]string{
	"xls": DocTypeCell, "xlsx": DocTypeCell, "xlsm": DocTypeCell,
	"xlt": DocTypeCell, "xltx": DocTypeCell, "xltm": DocTypeCell,
	"ods": DocTypeCell, "fods": DocTypeCell, "ots": DocTypeCell,
	"csv": DocTypeCell,
	"pps": DocTypeSlide, "ppsx": DocTypeSlide, "ppsm": DocTypeSlide,
	"ppt": DocTypeSlide, "pptx": DocTypeSlide, "pptm": DocTypeSlide,
	"pot": DocTypeSlide, "potx": DocTypeSlide, "potm": DocTypeSlide,
	"odp": DocTypeSlide, "fodp": DocTypeSlide, "otp": DocTypeSlide,
	"doc": DocTypeWord, "docx": DocTypeWord, "docm": DocTypeWord,
	"dot": DocTypeWord, "dotx": DocTypeWord, "dotm": DocTypeWord,
	"odt": DocTypeWord, "fodt": DocTypeWord, "ott": DocTypeWord,
	"rtf": DocTypeWord,
}

// FileExtension returns the lowercase extension of name without the dot.
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// IsViewable reports whether the extension can be opened at all.
func IsViewable(ext string) bool {
	_, ok := viewExtensions[ext]
	return ok
}

// IsEditable reports whether the extension supports editing.
func IsEditable(ext string) bool {
	_, ok := editExtensions[ext]
	return ok
}

// DocumentTypeByExtension maps an extension to the editor document type.
// Unknown extensions fall back to word, matching the file browser's behavior.
func DocumentTypeByExtension(ext string) string {
	if t, ok := viewExtensions[ext]; ok {
		return t
	}
	return DocTypeWord
}

// ContentTypeByExtension returns the MIME type used for re-uploading a saved
// document. Only the three editable formats reach the upload path.
func ContentTypeByExtension(ext string) string {
	switch ext {
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return "application/octet-stream"
	}
}
