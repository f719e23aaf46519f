package gateway

import "stagelink/internal/auth"

// SendKeyEvent forwards a single key press to the application. Denial is
// explicit; an unwired key handler reports not-found.
func (g *Gateway) SendKeyEvent(token, key string) Outcome {
	g.touch(token)
	if denied, allowed := g.checkRight(token, auth.RightUseKeyboard); !allowed {
		return denied
	}
	handler := g.port.Snapshot().SendKeyEvent
	if handler == nil {
		return notFound()
	}
	handler(key)
	return ok(nil)
}

// SendKeyStringEvent forwards a text input event with modifier state.
func (g *Gateway) SendKeyStringEvent(token, keyString string, shift, alt, ctrl bool) Outcome {
	g.touch(token)
	if denied, allowed := g.checkRight(token, auth.RightUseKeyboard); !allowed {
		return denied
	}
	handler := g.port.Snapshot().SendKeyStringEvent
	if handler == nil {
		return notFound()
	}
	handler(keyString, shift, alt, ctrl)
	return ok(nil)
}
