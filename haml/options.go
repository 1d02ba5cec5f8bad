package haml

import (
	"fmt"

	"go.uber.org/zap"
)

// Compiler converts source documents into Django templates.
// A Compiler is immutable once created, and can be used concurrently.
type Compiler struct {
	djangoInlineStyle bool
	attrWrapper       byte

	executor    Executor
	highlighter Renderer
	markdown    Renderer
	diagram     Renderer

	log *zap.SugaredLogger
}

// An Option configures a Compiler.
type Option func(*Compiler) error

// New returns a Compiler with the default configuration modified by opts:
// Django inline style enabled, attributes wrapped in single quotes,
// no code execution and no external renderers.
func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		djangoInlineStyle: true,
		attrWrapper:       '\'',
		log:               zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Compile is a shortcut to create a Compiler with opts and process src.
func Compile(src string, opts ...Option) (string, error) {
	c, err := New(opts...)
	if err != nil {
		return "", err
	}
	return c.Process(src)
}

// WithDjangoInlineStyle enables or disables the '={expr}' interpolation markers.
// '#{expr}' markers are always enabled.
func WithDjangoInlineStyle(enabled bool) Option {
	return func(c *Compiler) error {
		c.djangoInlineStyle = enabled
		return nil
	}
}

// WithAttrWrapper sets the quote character around attribute values, ' or ".
func WithAttrWrapper(quote byte) Option {
	return func(c *Compiler) error {
		if quote != '\'' && quote != '"' {
			return fmt.Errorf("invalid attribute wrapper %q: must be ' or \"", quote)
		}
		c.attrWrapper = quote
		return nil
	}
}

// WithExecutor enables the ':python' filter.
// See Executor for the security implications.
func WithExecutor(e Executor) Option {
	return func(c *Compiler) error {
		c.executor = e
		return nil
	}
}

// WithHighlighter sets the renderer of the ':highlight' filter.
func WithHighlighter(r Renderer) Option {
	return func(c *Compiler) error {
		c.highlighter = r
		return nil
	}
}

// WithMarkdown sets the renderer of the ':markdown' filter.
func WithMarkdown(r Renderer) Option {
	return func(c *Compiler) error {
		c.markdown = r
		return nil
	}
}

// WithDiagram sets the renderer of the ':d2' filter.
func WithDiagram(r Renderer) Option {
	return func(c *Compiler) error {
		c.diagram = r
		return nil
	}
}

// WithLogger sets the logger for debugging traces. The default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Compiler) error {
		if log == nil {
			log = zap.NewNop().Sugar()
		}
		c.log = log
		return nil
	}
}

// DjangoInlineStyle reports whether '={expr}' markers are expanded.
func (c *Compiler) DjangoInlineStyle() bool {
	return c.djangoInlineStyle
}

// AttrWrapper returns the quote character around attribute values.
func (c *Compiler) AttrWrapper() byte {
	return c.attrWrapper
}
