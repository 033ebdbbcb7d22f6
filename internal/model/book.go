package model

const (
	DefaultVoice        = "fable"
	DefaultSpeed        = 1.0
	DefaultInstructions = "Read with excitement and clarity. Use varied intonation, subtle pauses, and a confident storyteller tone."
)

// VoiceSettings holds the narration configuration chosen for a book.
type VoiceSettings struct {
	Voice        string  `toml:"voice"`
	Speed        float64 `toml:"speed"`
	Instructions string  `toml:"instructions,omitempty"`
}

// DefaultVoiceSettings is used when a project has no voice configured.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Voice:        DefaultVoice,
		Speed:        DefaultSpeed,
		Instructions: DefaultInstructions,
	}
}

// BookProject is the single piece of state shared by every wizard step.
type BookProject struct {
	Title    string         `toml:"title"`
	Prompt   string         `toml:"prompt"`
	Outline  string         `toml:"outline,omitempty"`
	Chapters []string       `toml:"chapters,omitempty"`
	Voice    *VoiceSettings `toml:"voice,omitempty"`
}

// EffectiveVoice returns the project's voice settings, filling gaps with defaults.
func (p BookProject) EffectiveVoice() VoiceSettings {
	if p.Voice == nil {
		return DefaultVoiceSettings()
	}
	v := *p.Voice
	if v.Voice == "" {
		v.Voice = DefaultVoice
	}
	if v.Speed == 0 {
		v.Speed = DefaultSpeed
	}
	return v
}

// RenderRequest builds a render submission from the project contents.
func (p BookProject) RenderRequest(includeOutline bool) RenderRequest {
	v := p.EffectiveVoice()
	chapters := make([]string, len(p.Chapters))
	copy(chapters, p.Chapters)
	return RenderRequest{
		Title:          p.Title,
		Outline:        p.Outline,
		Chapters:       chapters,
		Voice:          v.Voice,
		Speed:          v.Speed,
		IncludeOutline: includeOutline,
		Instructions:   v.Instructions,
	}
}
