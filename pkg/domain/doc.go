/*
Package domain contains the core domain models of the walkthrough engine.

It defines the step graph vocabulary (Steps and Actions), the rendered controls
(Buttons), the navigation snapshot (NavigationState) and the error taxonomy.
This package is kept pure and free of I/O, following Hexagonal Architecture
principles: everything that touches a page, a URL or a store lives behind the
interfaces in package ports.

# Key Entities

  - Step: one page of the guided workflow (title, inline or fetched content, actions).
  - Action: a user-triggered transition, optionally opening an external link.
  - Button: the rendered form of an Action (or of the Back control).
  - NavigationState: a snapshot of the engine (current step, back stack, platform).
*/
package domain
