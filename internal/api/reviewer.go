package api

import (
	"context"

	"github.com/droidbridge/droidbridge/internal/bridge"
	"github.com/droidbridge/droidbridge/internal/host"
)

func (a *API) reviewerOperations() []bridge.Operation {
	ops := []bridge.Operation{
		{Name: "ankiGetDebugInfo", Handler: a.debugInfo},
		{Name: "ankiIsDisplayingAnswer", Handler: a.isDisplayingAnswer},
		{Name: "ankiShowAnswer", Handler: a.showAnswer},
	}
	for ease := host.EaseAgain; ease <= host.EaseEasy; ease++ {
		handler := a.answerEase(ease)
		ops = append(ops,
			bridge.Operation{Name: "ankiAnswerEase" + digit(ease), Handler: handler},
			// The button-prefixed aliases exist for template compatibility.
			bridge.Operation{Name: "buttonAnswerEase" + digit(ease), Handler: handler},
		)
	}
	return ops
}

func digit(n int) string {
	return string(rune('0' + n))
}

// debugInfo reports reviewer state and which host collaborators are attached.
func (a *API) debugInfo(context.Context, bridge.Args) (any, error) {
	if a.hst.Reviewer == nil {
		return map[string]any{"error": "no reviewer attached"}, nil
	}

	info := map[string]any{
		"state":   a.hst.Reviewer.State(),
		"card_id": nil,
		"attached": map[string]bool{
			"collection": a.hst.Collection != nil,
			"window":     a.hst.Window != nil,
			"tts":        a.tts != nil,
		},
	}
	if card, ok := a.currentCard(); ok {
		info["card_id"] = card.ID
	}
	return info, nil
}

func (a *API) isDisplayingAnswer(context.Context, bridge.Args) (any, error) {
	if a.hst.Reviewer == nil {
		return false, nil
	}
	return a.hst.Reviewer.State() == host.StateAnswer, nil
}

// showAnswer flips the current card. Already showing the answer counts as
// success; no card at all does not.
func (a *API) showAnswer(context.Context, bridge.Args) (any, error) {
	if a.hst.Reviewer == nil {
		return false, nil
	}

	switch a.hst.Reviewer.State() {
	case host.StateQuestion:
		if err := a.hst.Reviewer.ShowAnswer(); err != nil {
			return nil, err
		}
		return true, nil
	case host.StateAnswer:
		return true, nil
	default:
		return false, nil
	}
}

// answerEase grades the current card. The card must be on its answer side;
// grading from the question side is refused rather than auto-flipped, so a
// template cannot answer a card the user never saw.
func (a *API) answerEase(ease int) bridge.Handler {
	return func(context.Context, bridge.Args) (any, error) {
		if a.hst.Reviewer == nil {
			return false, nil
		}
		if _, ok := a.currentCard(); !ok {
			return false, nil
		}
		if a.hst.Reviewer.State() != host.StateAnswer {
			return false, nil
		}
		if err := a.hst.Reviewer.AnswerCard(ease); err != nil {
			return nil, err
		}
		return true, nil
	}
}
