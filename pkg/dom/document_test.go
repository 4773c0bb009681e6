package dom_test

import (
	"strings"
	"testing"

	"github.com/aretw0/walkthrough/pkg/dom"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_InitialState(t *testing.T) {
	d := dom.New()
	assert.True(t, d.LoadingVisible())
	assert.False(t, d.ContentVisible())
	assert.Empty(t, d.Title())
	assert.Empty(t, d.Buttons())
}

func TestDocument_Regions(t *testing.T) {
	d := dom.New()
	d.SetLoading(false)
	d.ShowContent()
	d.SetTitle("Install")
	require.NoError(t, d.SetBody(`<p>Run <code>make</code></p>`))

	assert.False(t, d.LoadingVisible())
	assert.True(t, d.ContentVisible())
	assert.Equal(t, "Install", d.Title())
	assert.Equal(t, `<p>Run <code>make</code></p>`, d.BodyHTML())
	assert.Contains(t, d.HTML(), "<title>Install</title>")
}

func TestDocument_QueryClassIsSnapshot(t *testing.T) {
	d := dom.New()
	require.NoError(t, d.SetBody(`<p class="mac other-platform">a</p><p class="linux other-platform">b</p><p class="mac">c</p>`))

	macs := d.QueryClass("mac")
	require.Len(t, macs, 2)

	for _, el := range macs {
		el.Remove(domain.ClassOtherPlatform)
		el.Add(domain.ClassThisPlatform)
	}
	assert.Len(t, d.QueryClass(domain.ClassThisPlatform), 2)
	assert.Len(t, d.QueryClass(domain.ClassOtherPlatform), 1)

	// A static snapshot keeps its handles even after classes change.
	assert.True(t, macs[0].Contains(domain.ClassThisPlatform))
}

func TestDocument_ClassReplace(t *testing.T) {
	d := dom.New()
	require.NoError(t, d.SetBody(`<span class="a this-platform b">x</span><span class="c">y</span>`))

	tagged := d.QueryClass(domain.ClassThisPlatform)
	require.Len(t, tagged, 1)
	assert.True(t, tagged[0].Replace(domain.ClassThisPlatform, domain.ClassOtherPlatform))
	assert.Contains(t, d.BodyHTML(), `class="a other-platform b"`)

	plain := d.QueryClass("c")
	require.Len(t, plain, 1)
	assert.False(t, plain[0].Replace("missing", "other"))
	assert.Contains(t, d.BodyHTML(), `class="c"`)
}

func TestDocument_Actions(t *testing.T) {
	d := dom.New()
	d.SetActions([]domain.Button{
		domain.BackButton(),
		domain.ActionButton(domain.Action{Label: "Continue", NextStep: "next", StartDisabled: true}),
	})

	buttons := d.Buttons()
	require.Len(t, buttons, 2)
	assert.Equal(t, domain.BackButtonID, buttons[0].ID)
	assert.True(t, buttons[1].Disabled)
	assert.Contains(t, d.HTML(), `disabled`)

	assert.True(t, d.EnableAction("Continue"))
	assert.False(t, d.EnableAction("Missing"))

	b, ok := d.Button("Continue")
	require.True(t, ok)
	assert.False(t, b.Disabled)
	assert.Contains(t, b.Classes, domain.ClassActionEnabled)
	assert.NotContains(t, b.Classes, domain.ClassActionDisabled)
	assert.NotContains(t, d.HTML(), "disabled")

	d.ClearActions()
	assert.Empty(t, d.Buttons())
}

func TestDocument_Scroll(t *testing.T) {
	d := dom.New()
	require.NoError(t, d.SetBody(`<h2 id="troubleshooting">Troubleshooting</h2>`))

	d.ScrollToTop()
	assert.Equal(t, dom.ScrollTop, d.ScrollTarget())

	assert.True(t, d.ScrollIntoView("troubleshooting"))
	assert.Equal(t, "troubleshooting", d.ScrollTarget())

	assert.False(t, d.ScrollIntoView("nope"))
	assert.Equal(t, "troubleshooting", d.ScrollTarget())
}

func TestDocument_Markdown(t *testing.T) {
	d := dom.New()
	require.NoError(t, d.SetBody(`
<h2>Install</h2>
<p>Run the <strong>installer</strong>.</p>
<div class="mac this-platform"><pre>brew install tool</pre></div>
<div class="windows other-platform"><pre>winget install tool</pre></div>
<ul><li>one</li><li>two</li></ul>
<p>See <a href="https://example.com">docs</a>.</p>`))

	md := d.Markdown()
	assert.Contains(t, md, "## Install")
	assert.Contains(t, md, "**installer**")
	assert.Contains(t, md, "brew install tool")
	assert.NotContains(t, md, "winget")
	assert.Contains(t, md, "- one")
	assert.Contains(t, md, "[docs](https://example.com)")
	assert.False(t, strings.Contains(md, "\n\n\n"))
}
