package domain

import "errors"

// ErrConfigLoad is returned when the workflow configuration cannot be loaded.
// It is the only terminal error: the page shows a full error and stays there.
var ErrConfigLoad = errors.New("workflow configuration could not be loaded")

// ErrStepNotFound is returned when a step ID does not resolve in the graph.
var ErrStepNotFound = errors.New("step not found")

// ErrFragmentFetch is returned when a content fragment cannot be fetched.
var ErrFragmentFetch = errors.New("content fragment fetch failed")

// ErrStorageUnavailable is returned by preference stores that cannot be reached.
var ErrStorageUnavailable = errors.New("preference storage unavailable")

// ErrPreferenceNotFound is returned by preference stores when a key is absent.
var ErrPreferenceNotFound = errors.New("preference not found")

// ErrHistoryEmpty is returned when popping an empty back stack.
var ErrHistoryEmpty = errors.New("history is empty")

// ErrNotReady is returned when navigating before a successful Start.
var ErrNotReady = errors.New("engine is not ready")

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("engine already started")

// ErrButtonNotFound is returned when activating a control that is not rendered.
var ErrButtonNotFound = errors.New("button not found")

// ErrButtonDisabled is returned when activating a disabled control.
var ErrButtonDisabled = errors.New("button is disabled")

// ErrSessionNotFound is returned by session managers for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")
