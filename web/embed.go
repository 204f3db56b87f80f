package web

import "embed"

// TemplatesFS embeds the HTML views rendered by the server.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
