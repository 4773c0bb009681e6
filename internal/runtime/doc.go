/*
Package runtime implements the step-navigation engine.

The Engine owns the step graph, the back stack and the platform preference,
and is the single place where the current step changes. Every transition
(initial load, action, Back control, browser back/forward, restart) goes
through GoTo, which records a browser history entry when appropriate and
hands the step to the render pipeline.

Engine lifecycle is a small state machine (uninitialized, ready, error)
driven by the outcome of loading the configuration.
*/
package runtime
