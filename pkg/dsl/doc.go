/*
Package dsl builds walkthrough workflows in Go instead of JSON or YAML.

It is useful for tests, for embedding a wizard in a binary and for generating
workflows. The builder produces a memory.Source that walkthrough.New accepts.

Example usage:

	b := dsl.New()

	b.Step("welcome").
		Title("Welcome").
		Content("<p>Let's set up your machine.</p>").
		Go("Get started", "install")

	b.Step("install").
		Title("Install").
		ContentFile("install.html").
		Link("Download page", "https://example.com/download").
		Go("I have installed it", "done", dsl.StartDisabled())

	b.Step("done").Title("All set").Content("<p>Done.</p>")

	source, err := b.Build()
	// ... pass source to walkthrough.New(source)
*/
package dsl
