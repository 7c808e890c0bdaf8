// Package commentary produces the one-line remark shown after a run ends.
package commentary

import (
	"context"
	"fmt"
	"strings"
)

// Commentator never fails: every error path degrades to a canned line.
type Commentator interface {
	Remark(ctx context.Context, score, previousHigh int) string
}

// Language selects the persona language and the canned fallback lines.
type Language string

const (
	LangPortuguese Language = "pt-BR"
	LangEnglish    Language = "en"
)

// Messages are the canned lines used when no generated remark is available.
type Messages struct {
	Unavailable string
	Failed      string
	Empty       string
}

var messages = map[Language]Messages{
	LangPortuguese: {
		Unavailable: "Fim de Jogo! (IA indisponível)",
		Failed:      "Fim de Jogo! (Conexão perdida)",
		Empty:       "Fim de Jogo!",
	},
	LangEnglish: {
		Unavailable: "Game over! (AI unavailable)",
		Failed:      "Game over! (connection lost)",
		Empty:       "Game over!",
	},
}

func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pt", "pt-br", "pt_br":
		return LangPortuguese, nil
	case "en", "en-us", "en-gb":
		return LangEnglish, nil
	}
	return "", fmt.Errorf("unsupported commentary language %q", s)
}

// MessagesFor returns the canned lines for lang, defaulting to Portuguese.
func MessagesFor(lang Language) Messages {
	if m, ok := messages[lang]; ok {
		return m
	}
	return messages[LangPortuguese]
}

// Static always answers with the "unavailable" line. It is what runs when no
// API key is configured.
type Static struct {
	Lang Language
}

func (s Static) Remark(context.Context, int, int) string {
	return MessagesFor(s.Lang).Unavailable
}

// IsNewRecord reports whether a run beat the previous best.
func IsNewRecord(score, previousHigh int) bool {
	return score > previousHigh && score > 0
}

// Tier buckets a score for the persona.
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierHigh
)

func TierFor(score int) Tier {
	switch {
	case score < 5:
		return TierLow
	case score <= 20:
		return TierMid
	}
	return TierHigh
}
