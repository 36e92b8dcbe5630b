package api

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/droidbridge/droidbridge/internal/bridge"
	"github.com/droidbridge/droidbridge/internal/security"
)

func (a *API) tagOperations() []bridge.Operation {
	return []bridge.Operation{
		{Name: "ankiSetNoteTags", Params: []string{"tags"}, Handler: a.setNoteTags},
		{Name: "ankiGetNoteTags", Handler: a.noteTags},
		{Name: "ankiAddTagToNote", Params: []string{"tag"}, Handler: a.addTagToNote},
	}
}

// setNoteTags replaces all tags on the current note. Tags are trimmed, inner
// spaces become underscores, and empties are dropped.
func (a *API) setNoteTags(ctx context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiSetNoteTags", args, "tags")
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, bridge.Errorf(bridge.KindTypeError, "ankiSetNoteTags: tags must be an array, got %T", v)
	}

	tags := make([]string, 0, len(list))
	for _, item := range list {
		tag, ok := item.(string)
		if !ok {
			return nil, bridge.Errorf(bridge.KindTypeError, "ankiSetNoteTags: tag must be a string, got %T", item)
		}
		tag = strings.ReplaceAll(strings.TrimSpace(tag), " ", "_")
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	note, ok, err := a.currentNote(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return false, nil
	}

	note.Tags = tags
	if err := a.hst.Collection.SaveNote(ctx, note); err != nil {
		return nil, err
	}
	if a.hst.Window != nil {
		a.hst.Window.RequireReset()
	}
	return true, nil
}

// noteTags returns the current note's tags as a JSON-encoded array string,
// the shape the mobile API uses.
func (a *API) noteTags(ctx context.Context, _ bridge.Args) (any, error) {
	note, ok, err := a.currentNote(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return "[]", nil
	}

	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// addTagToNote validates and adds one tag, leaving existing tags in place.
// Adding a tag the note already carries is a no-op success.
func (a *API) addTagToNote(ctx context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiAddTagToNote", args, "tag")
	if err != nil {
		return nil, err
	}
	tag, err := security.ValidateTag(v, security.MaxTagLength)
	if err != nil {
		return nil, err
	}

	note, ok, err := a.currentNote(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return false, nil
	}

	if !note.HasTag(tag) {
		note.Tags = append(note.Tags, tag)
		if err := a.hst.Collection.SaveNote(ctx, note); err != nil {
			return nil, err
		}
	}
	return true, nil
}
