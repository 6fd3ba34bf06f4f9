package chat

// Params holds the generation parameters for a session. Each field is
// independently settable through session.Store.SetChatParams; a Message.Meta
// snapshot freezes the values active at creation time.
type Params struct {
	Model           string  `json:"model"`
	Temperature     float64 `json:"temperature"`
	ContextLimit    int     `json:"context_limit"`
	MaxTokens       int     `json:"max_tokens"`
	ThinkingEnabled bool    `json:"thinking_enabled"`
	ToolsDisabled   bool    `json:"tools_disabled"`
	OverrideModel   string  `json:"override_model,omitempty"`
}

// EffectiveModel returns OverrideModel when set, otherwise Model.
func (p Params) EffectiveModel() string {
	if p.OverrideModel != "" {
		return p.OverrideModel
	}
	return p.Model
}

// ParamsPatch is a partial update to Params. Nil fields leave the current
// value untouched, so every parameter can be changed independently.
type ParamsPatch struct {
	Model           *string  `json:"model,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	ContextLimit    *int     `json:"context_limit,omitempty"`
	MaxTokens       *int     `json:"max_tokens,omitempty"`
	ThinkingEnabled *bool    `json:"thinking_enabled,omitempty"`
	ToolsDisabled   *bool    `json:"tools_disabled,omitempty"`
	OverrideModel   *string  `json:"override_model,omitempty"`
}

// Apply merges the patch into p and returns the result. The receiver is not
// modified.
func (p Params) Apply(patch ParamsPatch) Params {
	if patch.Model != nil {
		p.Model = *patch.Model
	}
	if patch.Temperature != nil {
		p.Temperature = *patch.Temperature
	}
	if patch.ContextLimit != nil {
		p.ContextLimit = *patch.ContextLimit
	}
	if patch.MaxTokens != nil {
		p.MaxTokens = *patch.MaxTokens
	}
	if patch.ThinkingEnabled != nil {
		p.ThinkingEnabled = *patch.ThinkingEnabled
	}
	if patch.ToolsDisabled != nil {
		p.ToolsDisabled = *patch.ToolsDisabled
	}
	if patch.OverrideModel != nil {
		p.OverrideModel = *patch.OverrideModel
	}
	return p
}
