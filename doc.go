/*
Package walkthrough is a guided multi-step setup wizard engine.

A workflow is a graph of steps described in a JSON, YAML or TOML document,
or built in Go with the dsl package. Each step has a title, a body (inline
markup or a fragment file) and a list of actions that lead to other steps or
open external links. The engine renders one step at a time into a page,
keeps the browser URL and history in sync so steps can be bookmarked and
navigated with back/forward, and remembers the user's platform so content
written for other operating systems can be hidden.

# Concept

The engine owns the navigation state (current step, back stack, platform) and
talks to the outside world through the ports package: a ConfigSource for the
workflow, a FragmentFetcher for content files, a Page to render into, a
BrowserHistory for the URL and a PreferenceStore for the platform. Hosts (the
HTTP server, the terminal UI, the MCP server) drive the same engine.

# Configuration

	{
	  "workflow": {
	    "startStep": "welcome",
	    "steps": {
	      "welcome": {
	        "title": "Welcome",
	        "content": "<p>Let's get you set up.</p>",
	        "actions": [{"label": "Start", "nextStep": "install"}]
	      },
	      "install": {
	        "title": "Install",
	        "contentFile": "steps/install.html",
	        "actions": [{"label": "Done", "nextStep": "welcome"}]
	      }
	    }
	  }
	}

# Usage

	eng, err := walkthrough.Open("./workflow.json")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := eng.Start(ctx); err != nil {
		log.Fatal(err)
	}

	// Click the "Start" button.
	if err := eng.Activate(ctx, "Start"); err != nil {
		log.Fatal(err)
	}

	view := eng.View()
	fmt.Println(view.Title, view.URL)
*/
package walkthrough
