package graw

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetsBody() map[string]any {
	return map[string]any{
		"items": map[string]any{
			"widget_id": map[string]any{"kind": "id-card", "shortName": "About", "subscribersCount": 10},
			"widget_mods": map[string]any{
				"kind":      "moderators",
				"shortName": "Moderators",
				"mods":      []any{map[string]any{"name": "spez"}, map[string]any{"name": "kn0thing"}},
			},
			"widget_buttons": map[string]any{
				"kind":      "button",
				"shortName": "Links",
				"data": []any{
					map[string]any{"kind": "text", "text": "Docs", "url": "https://go.dev/doc", "textColor": "#fff"},
				},
			},
			"widget_menu": map[string]any{
				"kind": "menu",
				"data": []any{
					map[string]any{"text": "Home", "url": "https://go.dev"},
					map[string]any{"text": "More", "children": []any{
						map[string]any{"text": "Blog", "url": "https://go.dev/blog"},
					}},
				},
			},
			"widget_text": map[string]any{"kind": "textarea", "shortName": "Notes", "text": "be kind"},
		},
		"layout": map[string]any{
			"idCardWidget":    "widget_id",
			"moderatorWidget": "widget_mods",
			"topbar":          map[string]any{"order": []any{"widget_menu"}},
			"sidebar":         map[string]any{"order": []any{"widget_text", "widget_buttons", "widget_gone"}},
		},
	}
}

func TestSubredditWidgetsLayout(t *testing.T) {
	fake := newFakeRequestor(t).on(http.MethodGet, "r/test/api/widgets", widgetsBody())
	r := newTestReddit(t, fake)

	widgets, err := r.Subreddit("test").Widgets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "true", fake.requests[0].Params.Get("progressive_images"))

	require.NotNil(t, widgets.IDCard)
	assert.Equal(t, WidgetIDCard, widgets.IDCard.Kind())
	assert.Equal(t, "widget_id", widgets.IDCard.ID())

	require.NotNil(t, widgets.Moderators)
	mods := widgets.Moderators.Moderators()
	require.Len(t, mods, 2)
	assert.Equal(t, "spez", mods[0].Key())

	require.Len(t, widgets.Sidebar, 2)
	assert.Equal(t, "be kind", widgets.Sidebar[0].Text())
	buttons := widgets.Sidebar[1].Buttons()
	require.Len(t, buttons, 1)
	assert.Equal(t, "Docs", buttons[0].Text)
	assert.Equal(t, "#fff", buttons[0].TextColor)

	require.Len(t, widgets.Topbar, 1)
	menu := widgets.Topbar[0].Menu()
	require.Len(t, menu, 2)
	assert.Equal(t, MenuLink{Text: "Home", URL: "https://go.dev"}, menu[0])
	sub, ok := menu[1].(Submenu)
	require.True(t, ok)
	assert.Equal(t, []MenuLink{{Text: "Blog", URL: "https://go.dev/blog"}}, sub.Children)

	assert.Len(t, widgets.Items, 5)
}

func TestWidgetAccessorsOnOtherKinds(t *testing.T) {
	w := newWidget(nil, map[string]any{"kind": "textarea", "text": "x"})
	assert.Nil(t, w.Buttons())
	assert.Nil(t, w.Moderators())
	assert.Equal(t, "x", w.Text())
}
