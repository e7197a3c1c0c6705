package internal

import (
	"fmt"
	"strings"
)

// Fields supplies placeholder values for an endpoint template.
type Fields map[string]string

// endpoints maps symbolic names to path templates relative to the OAuth host.
var endpoints = map[string]string{
	"about_edited":         "r/{subreddit}/about/edited/",
	"about_log":            "r/{subreddit}/about/log/",
	"about_modqueue":       "r/{subreddit}/about/modqueue/",
	"about_rules":          "r/{subreddit}/about/rules/",
	"about_sticky":         "r/{subreddit}/about/sticky/",
	"collection":           "api/v1/collections/collection",
	"collection_follow":    "api/v1/collections/follow_collection",
	"comment":              "api/comment/",
	"comment_thread":       "comments/{id}/_/{comment}/",
	"compose":              "api/compose/",
	"del":                  "api/del/",
	"draft":                "api/v1/draft",
	"drafts":               "api/v1/drafts",
	"duplicates":           "duplicates/{submission_id}/",
	"edit":                 "api/editusertext/",
	"emoji_list":           "api/v1/{subreddit}/emojis/all",
	"flairlist":            "r/{subreddit}/api/flairlist/",
	"hide":                 "api/hide/",
	"info":                 "api/info/",
	"live_about":           "live/{id}/about",
	"live_add_update":      "api/live/{id}/update",
	"live_focus":           "live/{thread_id}/updates/{update_id}",
	"live_updates":         "live/{id}",
	"me":                   "api/v1/me",
	"media_asset":          "api/media/asset.json",
	"message_comments":     "message/comments/",
	"message_inbox":        "message/inbox/",
	"message_messages":     "message/messages/",
	"message_sent":         "message/sent/",
	"message_unread":       "message/unread/",
	"mod_notes":            "api/mod/notes",
	"mod_notes_bulk":       "api/mod/notes/recent",
	"modmail_archive":      "api/mod/conversations/{id}/archive",
	"modmail_conversation": "api/mod/conversations/{id}",
	"modmail_read":         "api/mod/conversations/read",
	"modmail_unarchive":    "api/mod/conversations/{id}/unarchive",
	"morechildren":         "api/morechildren/",
	"multireddit":          "user/{user}/m/{multi}/",
	"multireddit_api":      "api/multi/{multipath}/",
	"multireddit_base":     "api/multi/",
	"multireddit_copy":     "api/multi/copy/",
	"multireddit_update":   "api/multi/{multipath}/r/{subreddit}",
	"read_message":         "api/read_message/",
	"removal_reasons":      "api/v1/{subreddit}/removal_reasons/",
	"report":               "api/report/",
	"save":                 "api/save/",
	"search":               "r/{subreddit}/search/",
	"sticky_submission":    "api/set_subreddit_sticky/",
	"store_visits":         "api/store_visits",
	"submission":           "comments/{id}/",
	"submit":               "api/submit/",
	"subreddit":            "r/{subreddit}/",
	"subreddit_about":      "r/{subreddit}/about/",
	"subreddit_comments":   "r/{subreddit}/comments/",
	"subreddit_random":     "r/{subreddit}/random/",
	"unhide":               "api/unhide/",
	"unread_message":       "api/unread_message/",
	"unsave":               "api/unsave/",
	"user":                 "user/{user}/",
	"user_about":           "user/{user}/about/",
	"user_by_fullname":     "api/user_data_by_account_ids",
	"vote":                 "api/vote/",
	"widgets":              "r/{subreddit}/api/widgets",
	"wiki_edit":            "r/{subreddit}/api/wiki/edit/",
	"wiki_page":            "r/{subreddit}/wiki/{page}",
	"wiki_page_revisions":  "r/{subreddit}/wiki/revisions/{page}",
}

// Endpoint formats the named template with fields. Unknown names and
// unfilled placeholders are programming errors and panic.
func Endpoint(name string, fields Fields) string {
	tmpl, ok := endpoints[name]
	if !ok {
		panic(fmt.Sprintf("unknown endpoint %q", name))
	}
	for k, v := range fields {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	if strings.Contains(tmpl, "{") {
		panic(fmt.Sprintf("endpoint %q has unfilled placeholders: %s", name, tmpl))
	}
	return tmpl
}
