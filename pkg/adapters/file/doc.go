// Package file provides filesystem adapters: a configuration source with
// hot reload, a fragment fetcher rooted at a content directory and a JSON
// preference store.
package file
