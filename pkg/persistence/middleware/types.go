// Package middleware wraps preference stores with extra behavior.
package middleware

import "github.com/aretw0/walkthrough/pkg/ports"

// Middleware allows wrapping a PreferenceStore to add behavior.
type Middleware func(ports.PreferenceStore) ports.PreferenceStore

// Chain applies mws to store. The first middleware is the outermost.
func Chain(store ports.PreferenceStore, mws ...Middleware) ports.PreferenceStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
