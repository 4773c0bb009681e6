/*
Package graph loads and validates the workflow step graph.

A configuration document looks like:

	{
	  "workflow": {
	    "startStep": "welcome",
	    "steps": {
	      "welcome": {
	        "title": "Welcome",
	        "content": "<p>Hello</p>",
	        "actions": [{"label": "Start", "nextStep": "install"}]
	      },
	      "install": {
	        "title": "Install",
	        "contentFile": "fragments/install.html",
	        "actions": []
	      }
	    }
	  }
	}

The same structure may be written in YAML. A StepGraph is immutable once loaded.
*/
package graph
