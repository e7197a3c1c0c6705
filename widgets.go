package graw

// Widget kinds Reddit emits for sidebar and topbar widgets.
const (
	WidgetButton         = "button"
	WidgetCalendar       = "calendar"
	WidgetCommunityList  = "community-list"
	WidgetCustom         = "custom"
	WidgetIDCard         = "id-card"
	WidgetImage          = "image"
	WidgetMenu           = "menu"
	WidgetModerators     = "moderators"
	WidgetPostFlair      = "post-flair"
	WidgetSubredditRules = "subreddit-rules"
	WidgetTextArea       = "textarea"
)

func isWidgetKind(kind string) bool {
	switch kind {
	case WidgetButton, WidgetCalendar, WidgetCommunityList, WidgetCustom, WidgetIDCard, WidgetImage,
		WidgetMenu, WidgetModerators, WidgetPostFlair, WidgetSubredditRules, WidgetTextArea:
		return true
	}
	return false
}

// Image is an image of an image widget.
type Image struct {
	URL     string
	LinkURL string
	Width   int
	Height  int
}

// ImageData is an image uploaded for a custom widget's stylesheet.
type ImageData struct {
	Name   string
	URL    string
	Width  int
	Height int
}

// Button is a button of a button widget.
type Button struct {
	Kind      string
	Text      string
	URL       string
	Color     string
	TextColor string
	FillColor string
}

// MenuEntry is a top-level entry of a menu widget: a MenuLink or a Submenu.
type MenuEntry interface {
	menuEntry()
}

// MenuLink is a link in a menu widget.
type MenuLink struct {
	Text string
	URL  string
}

// Submenu is a named group of links in a menu widget.
type Submenu struct {
	Text     string
	Children []MenuLink
}

func (MenuLink) menuEntry() {}
func (Submenu) menuEntry()  {}

// Widget is a sidebar or topbar widget. The Kind selects which typed
// accessor holds its content.
type Widget struct {
	base
	widgetKind string
}

func newWidget(r *Reddit, data map[string]any) *Widget {
	w := &Widget{widgetKind: asString(data["kind"])}
	w.base = newBase(r, "Widget", "", "id")
	w.rule = w.objectifyAttr
	w.load(data)
	w.fetched = true
	return w
}

func (w *Widget) objectifyAttr(name string, v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	switch {
	case name == "data" && w.widgetKind == WidgetButton:
		return mapItems(items, func(m map[string]any) Button {
			return Button{
				Kind:      asString(m["kind"]),
				Text:      asString(m["text"]),
				URL:       asString(m["url"]),
				Color:     asString(m["color"]),
				TextColor: asString(m["textColor"]),
				FillColor: asString(m["fillColor"]),
			}
		})
	case name == "data" && w.widgetKind == WidgetImage:
		return mapItems(items, func(m map[string]any) Image {
			return Image{
				URL:     asString(m["url"]),
				LinkURL: asString(m["linkUrl"]),
				Width:   asInt(m["width"]),
				Height:  asInt(m["height"]),
			}
		})
	case name == "data" && w.widgetKind == WidgetMenu:
		return mapItems(items, func(m map[string]any) MenuEntry {
			if children, ok := m["children"].([]any); ok {
				return Submenu{Text: asString(m["text"]), Children: mapItems(children, menuLink)}
			}
			return menuLink(m)
		})
	case name == "data" && w.widgetKind == WidgetCommunityList:
		return mapItems(items, func(m map[string]any) *Subreddit {
			return w.reddit.Subreddit(asString(m["name"]))
		})
	case name == "mods" && w.widgetKind == WidgetModerators:
		return mapItems(items, func(m map[string]any) *Redditor {
			return w.reddit.Redditor(asString(m["name"]))
		})
	case name == "imageData" && w.widgetKind == WidgetCustom:
		return mapItems(items, func(m map[string]any) ImageData {
			return ImageData{
				Name:   asString(m["name"]),
				URL:    asString(m["url"]),
				Width:  asInt(m["width"]),
				Height: asInt(m["height"]),
			}
		})
	}
	return v
}

func menuLink(m map[string]any) MenuLink {
	return MenuLink{Text: asString(m["text"]), URL: asString(m["url"])}
}

func mapItems[T any](items []any, fn func(map[string]any) T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if m := asMap(item); m != nil {
			out = append(out, fn(m))
		}
	}
	return out
}

// Kind returns the widget kind, one of the Widget* constants.
func (w *Widget) Kind() string {
	return w.widgetKind
}

// ID returns the widget id.
func (w *Widget) ID() string {
	return asString(w.attrs["id"])
}

// ShortName returns the widget title.
func (w *Widget) ShortName() string {
	return asString(w.attrs["shortName"])
}

// Buttons returns the buttons of a button widget.
func (w *Widget) Buttons() []Button {
	return entityAs[[]Button](w.attrs["data"])
}

// Images returns the images of an image widget.
func (w *Widget) Images() []Image {
	return entityAs[[]Image](w.attrs["data"])
}

// Menu returns the entries of a menu widget.
func (w *Widget) Menu() []MenuEntry {
	return entityAs[[]MenuEntry](w.attrs["data"])
}

// Communities returns the subreddits of a community list widget.
func (w *Widget) Communities() []*Subreddit {
	return entityAs[[]*Subreddit](w.attrs["data"])
}

// Moderators returns the moderators listed by a moderators widget.
func (w *Widget) Moderators() []*Redditor {
	return entityAs[[]*Redditor](w.attrs["mods"])
}

// ImageData returns the stylesheet images of a custom widget.
func (w *Widget) ImageData() []ImageData {
	return entityAs[[]ImageData](w.attrs["imageData"])
}

// Text returns the markdown of a text area or custom widget.
func (w *Widget) Text() string {
	return asString(w.attrs["text"])
}

// SubredditWidgets holds a subreddit's widgets arranged as Reddit lays them out.
type SubredditWidgets struct {
	Subreddit  *Subreddit
	Items      map[string]*Widget
	IDCard     *Widget
	Moderators *Widget
	Sidebar    []*Widget
	Topbar     []*Widget
}

func newSubredditWidgets(s *Subreddit, data map[string]any) *SubredditWidgets {
	w := &SubredditWidgets{Subreddit: s, Items: map[string]*Widget{}}
	for id, item := range asMap(data["items"]) {
		if widget, ok := item.(*Widget); ok {
			widget.attrs["id"] = id
			w.Items[id] = widget
		}
	}

	layout := asMap(data["layout"])
	w.IDCard = w.Items[asString(layout["idCardWidget"])]
	w.Moderators = w.Items[asString(layout["moderatorWidget"])]
	w.Sidebar = w.ordered(asMap(layout["sidebar"]))
	w.Topbar = w.ordered(asMap(layout["topbar"]))
	return w
}

func (w *SubredditWidgets) ordered(section map[string]any) []*Widget {
	var out []*Widget
	for _, id := range asStrings(section["order"]) {
		if widget, ok := w.Items[id]; ok {
			out = append(out, widget)
		}
	}
	return out
}
