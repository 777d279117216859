package model

import "html/template"

// PageData is what the article template is executed with.
type PageData struct {
	SiteTitle       string
	Language        string
	Title           string
	MetaDescription string
	Summary         string
	Content         template.HTML
	Buttons         []Button
	ImageURL        string
	ImageAlt        string
	LastUpdated     string
}
