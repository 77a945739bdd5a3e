package game

import "time"

// Settings are the per-process game tunables.
type Settings struct {
	MaxPlayers           int
	RoundSeconds         int
	WinningScore         int
	RoundDelay           time.Duration
	ChatHistoryCap       int
	DefaultLanguage      string
	RevealWordToGuessers bool
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:           8,
		RoundSeconds:         60,
		WinningScore:         1000,
		RoundDelay:           3 * time.Second,
		ChatHistoryCap:       100,
		DefaultLanguage:      "en",
		RevealWordToGuessers: true,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.MaxPlayers <= 0 {
		s.MaxPlayers = def.MaxPlayers
	}
	if s.RoundSeconds <= 0 {
		s.RoundSeconds = def.RoundSeconds
	}
	if s.WinningScore <= 0 {
		s.WinningScore = def.WinningScore
	}
	if s.RoundDelay <= 0 {
		s.RoundDelay = def.RoundDelay
	}
	if s.ChatHistoryCap <= 0 {
		s.ChatHistoryCap = def.ChatHistoryCap
	}
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = def.DefaultLanguage
	}
	return s
}
