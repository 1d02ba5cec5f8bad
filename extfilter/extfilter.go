// Package extfilter implements the external collaborators of the filters of
// the haml package: syntax highlighting, markdown, diagrams and code execution.
package extfilter

import "github.com/hesusruiz/hamlet/haml"

// Renderers returns the options installing the highlighter, markdown and diagram renderers.
// Code execution is not included and must be enabled explicitly with haml.WithExecutor.
func Renderers(style string) []haml.Option {
	return []haml.Option{
		haml.WithHighlighter(&Chroma{Style: style}),
		haml.WithMarkdown(NewGoldmark()),
		haml.WithDiagram(&D2{}),
	}
}
