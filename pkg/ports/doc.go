/*
Package ports defines the driven ports (interfaces) of the walkthrough engine.

The engine never touches a browser, a file or a database directly. Instead it
talks to these interfaces, which keeps the navigation state machine testable
and lets the same core run behind an HTTP server, a terminal UI or an agent.

# Key Interfaces

  - ConfigSource: where the workflow configuration document comes from.
  - FragmentFetcher: resolves a step's contentFile into markup.
  - Page: the five DOM regions the render pipeline writes into.
  - BrowserHistory: the URL and history entries (pushState / popstate).
  - PreferenceStore: the key/value store behind the platform preference.
  - LinkOpener: opens external links in a new browsing context.
*/
package ports
