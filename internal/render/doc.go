// Package render converts markdown message bodies into ANSI-styled text
// suitable for a terminal. Assistant replies arrive as markdown; rather
// than dumping raw asterisks and backticks at the user, the renderer
// parses the source with goldmark and re-emits it with color styling for
// headings, emphasis, code, links, and lists. Plain text without markup
// passes through unchanged.
package render
