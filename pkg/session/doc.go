/*
Package session keeps one walkthrough engine per visitor.

A multi-user host (the HTTP server) cannot share a single engine: each
browser has its own current step, back stack and platform. The Manager
creates engines lazily through a Factory, serializes operations on the same
session with a reference-counted lock and evicts sessions that have been
idle for too long.
*/
package session
