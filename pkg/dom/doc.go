/*
Package dom provides an in-memory HTML document implementing ports.Page.

The document is a small skeleton with the five regions the wizard writes into
(loading indicator, content container, title, body and action area), backed by
golang.org/x/net/html nodes. Step bodies are parsed as real HTML fragments, so
platform classes in fetched content can be toggled exactly like in a browser.

Hosts read the result back with HTML (server-side rendering), Markdown (terminal
rendering) and the small accessors used by tests.
*/
package dom
