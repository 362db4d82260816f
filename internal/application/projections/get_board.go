package projections

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"activityboard/internal/application/board"
	"activityboard/internal/domain/activity"
	"activityboard/internal/domain/locale"
)

// BoardSource exposes the catalog the board renders from.
type BoardSource interface {
	Snapshot() (activity.Catalog, board.LoadState)
	Comparer() activity.Comparer
}

// mdRenderer renders activity descriptions. Raw HTML in the input is escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// GetBoardQuery carries query parameters.
type GetBoardQuery struct {
	Filter activity.Filter
	Locale string // tag or Accept-Language header
}

// GetBoardDeps holds dependencies for GetBoard.
type GetBoardDeps struct {
	Board      BoardSource
	Translator locale.Translator
}

// ParticipantView is one entry of a card's participant list.
type ParticipantView struct {
	Email string `json:"email"`
	Key   string `json:"key"` // encoded activity.ParticipantKey for the removal control
}

// CardView is the rendered form of one visible activity.
type CardView struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	DescriptionHTML template.HTML     `json:"-"`
	Schedule        string            `json:"schedule"`
	Category        string            `json:"category"` // label; "General" when uncategorised
	SpotsLeft       int               `json:"spots_left"`
	SpotsLeftText   string            `json:"spots_left_text"`
	Participants    []ParticipantView `json:"participants"`
}

// Option is one entry of a select control.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// GetBoardResult carries the query result.
type GetBoardResult struct {
	Filter          activity.Filter `json:"-"`
	Search          string          `json:"search"`
	Cards           []CardView      `json:"cards"`
	ActivityOptions []string        `json:"activity_options"`
	Categories      []Option        `json:"categories"`
	SortOptions     []Option        `json:"sort_options"`
	Empty           bool            `json:"empty"`
	LoadFailed      bool            `json:"load_failed"`
	Notice          string          `json:"notice,omitempty"` // replaces the list when Empty or LoadFailed
	LoadedAt        time.Time       `json:"loaded_at,omitzero"`
}

// QueryGetBoard derives the whole board view from the held catalog and the filter state.
// PRE: deps.Board and deps.Translator are non-nil
// POST: ActivityOptions equals the names of the visible list, in the same order
// INVARIANT: pure with respect to its inputs; the catalog is not modified
func QueryGetBoard(_ context.Context, query GetBoardQuery, deps GetBoardDeps) (GetBoardResult, error) {
	catalog, state := deps.Board.Snapshot()
	cmp := deps.Board.Comparer()
	tr := deps.Translator
	loc := query.Locale

	selection := activity.CategoryOptions(catalog, query.Filter.Category, cmp)
	filter := query.Filter
	filter.Category = selection.Selected

	visible := activity.Derive(catalog, filter, cmp)

	result := GetBoardResult{
		Filter:          filter,
		Search:          filter.Search,
		ActivityOptions: make([]string, 0, len(visible)),
		Categories:      categoryOptions(selection, tr, loc),
		SortOptions:     sortOptions(filter.Sort, tr, loc),
		LoadedAt:        state.LoadedAt,
	}
	for _, e := range visible {
		result.ActivityOptions = append(result.ActivityOptions, e.Name)
	}

	switch {
	case state.Failed:
		result.LoadFailed = true
		result.Notice = tr.T(loc, locale.KeyLoadFailed, nil)
	case len(visible) == 0:
		result.Empty = true
		result.Notice = tr.T(loc, locale.KeyNoMatches, nil)
	default:
		result.Cards = make([]CardView, 0, len(visible))
		for _, e := range visible {
			result.Cards = append(result.Cards, buildCard(e, tr, loc))
		}
	}
	return result, nil
}

// IsActivityVisible reports whether name is in the visible list for the filter state.
// The category carry-over rule applies, matching what the board rendered.
func IsActivityVisible(source BoardSource, f activity.Filter, name string) bool {
	catalog, _ := source.Snapshot()
	cmp := source.Comparer()
	f.Category = activity.CategoryOptions(catalog, f.Category, cmp).Selected
	for _, e := range activity.Derive(catalog, f, cmp) {
		if e.Name == name {
			return true
		}
	}
	return false
}

func buildCard(e activity.Entry, tr locale.Translator, loc string) CardView {
	a := e.Activity
	spots := a.SpotsLeft()
	card := CardView{
		Name:            e.Name,
		Description:     a.Description,
		DescriptionHTML: renderMarkdown(a.Description),
		Schedule:        a.Schedule,
		Category:        a.CategoryLabel(),
		SpotsLeft:       spots,
		SpotsLeftText:   tr.T(loc, locale.KeySpotsLeft, map[string]any{"Count": spots}),
		Participants:    make([]ParticipantView, 0, len(a.Participants)),
	}
	for _, email := range a.Participants {
		card.Participants = append(card.Participants, ParticipantView{
			Email: email,
			Key:   activity.ParticipantKey{Activity: e.Name, Email: email}.Encode(),
		})
	}
	return card
}

func categoryOptions(sel activity.CategorySelection, tr locale.Translator, loc string) []Option {
	opts := make([]Option, 0, len(sel.Options))
	for _, c := range sel.Options {
		label := c
		if c == activity.CategoryAll {
			label = tr.T(loc, locale.KeyAllCategories, nil)
		}
		opts = append(opts, Option{Value: c, Label: label, Selected: c == sel.Selected})
	}
	return opts
}

var sortLabelKeys = map[activity.SortMode]string{
	activity.SortNameAsc:  locale.KeySortNameAsc,
	activity.SortNameDesc: locale.KeySortNameDesc,
	activity.SortTimeAsc:  locale.KeySortTimeAsc,
	activity.SortTimeDesc: locale.KeySortTimeDesc,
}

func sortOptions(current activity.SortMode, tr locale.Translator, loc string) []Option {
	opts := make([]Option, 0, len(activity.SortModes))
	for _, m := range activity.SortModes {
		opts = append(opts, Option{
			Value:    string(m),
			Label:    tr.T(loc, sortLabelKeys[m], nil),
			Selected: m == current,
		})
	}
	return opts
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		slog.Warn("description_render_failed", "error", err)
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
