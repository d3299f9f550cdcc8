// Package report renders assessment markdown into shareable HTML and PDF
// documents.
package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

const styleCSS = `
body{font-family:Georgia,serif;color:#1c1917;background:#fff;margin:0;padding:0.6rem;}
.report-wrap{max-width:860px;margin:0 auto;padding:0 0.65rem;border-left:3px solid #166534;border-right:3px solid #166534;}
.report-html h1{font-size:1.5rem;border-bottom:2px solid #166534;padding-bottom:0.3rem;}
.report-html h2{font-size:1.15rem;color:#14532d;}
.report-html table{width:100%;border-collapse:collapse;border:1px solid #a8a29e;font-size:0.85rem;}
.report-html th,.report-html td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;text-align:left;vertical-align:top;}
.report-html thead th{background:#f0fdf4;font-weight:700;}
.report-html blockquote{border-left:3px solid #fcd34d;background:#fffbeb;margin:0.5rem 0;padding:0.3rem 0.6rem;color:#78350f;}
.report-html a{color:#1d4ed8;text-decoration:underline;}
@media print{@page{size:auto;margin:12mm;} body{padding:0;} .report-wrap{max-width:none;border:0;}}
`

// RenderHTML converts assessment markdown into a full standalone HTML
// document.
func RenderHTML(markdown, title string) (string, error) {
	var content strings.Builder
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(title) + "</title>" +
		"<style>" + styleCSS + "</style></head><body>" +
		"<div class='report-wrap'><div class='report-html'>" + content.String() + "</div></div>" +
		"</body></html>", nil
}
