// Package haml compiles an indentation based markup into Django templates.
//
// Each line is classified by its first characters:
//
//	%tag#id.class{'attr': 'value'} text   an element, with optional inline content
//	#id or .class                           a div element
//	= expr, != expr                         a variable, escaped or not
//	- keyword expr                          a template tag, blocks are closed automatically
//	/ text, /[condition]                    an HTML comment or a conditional comment
//	-# text                                 a hidden comment, with its children
//	!!! token                               a doctype
//	:name                                   a filter, applied to the lines nested under it
//	\                                       escapes the first character of a line
//
// Any other line is text, where #{expr} and ={expr} are replaced by variables.
// Indentation defines the nesting and it is reproduced in the output.
package haml
