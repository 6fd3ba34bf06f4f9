package mode

import "context"

// PlainName is the registry name of the plain chat mode.
const PlainName = "plain"

const plainBasePrompt = "You are a helpful assistant. Answer the user's questions directly and concisely."

// PlainChat is the default conversation mode: no preprocessing, no mode
// state, and no send restrictions.
type PlainChat struct{}

// NewPlainChat creates the plain chat mode.
func NewPlainChat() *PlainChat {
	return &PlainChat{}
}

func (*PlainChat) Name() string { return PlainName }

func (*PlainChat) ModeConfig() Config {
	return Config{}
}

func (*PlainChat) OnInit(ctx context.Context, sess Session) error {
	sess.SetModeState(nil)
	return nil
}

func (*PlainChat) OnSendMessage(sess Session, text string) error {
	return nil
}

func (*PlainChat) BuildSystemPrompt(pc PromptContext) string {
	return plainBasePrompt
}

func (*PlainChat) EnabledTools(sess Session) []string {
	return nil
}
