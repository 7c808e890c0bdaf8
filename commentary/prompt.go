package commentary

import (
	"fmt"
	"strings"
)

type persona struct {
	intro   string
	brevity string
	low     string
	mid     string
	high    string
	record  string
	died    string
}

var personas = map[Language]persona{
	LangPortuguese: {
		intro:   "Você é uma personalidade sarcástica de uma máquina de arcade retrô (tipo a GLaDOS, mas para o jogo da Cobrinha). Responda sempre em Português do Brasil.",
		brevity: "Mantenha sua resposta extremamente curta (máx 1 frase).",
		low:     "Se a pontuação for baixa (< 5), zombe brutalmente do jogador.",
		mid:     "Se a pontuação for razoável (5-20), faça um elogio duvidoso ou sarcástico.",
		high:    "Se a pontuação for alta (> 20), fique impressionado a contragosto.",
		record:  "O JOGADOR ACABOU DE BATER O RECORDE! Mencione isso gritando.",
		died:    "O jogador morreu com uma pontuação de %d.",
	},
	LangEnglish: {
		intro:   "You are the sarcastic personality of a retro arcade cabinet running Snake. Always answer in English.",
		brevity: "Keep your answer extremely short (one sentence at most).",
		low:     "If the score is low (< 5), mock the player mercilessly.",
		mid:     "If the score is middling (5-20), give a backhanded compliment.",
		high:    "If the score is high (> 20), be grudgingly impressed.",
		record:  "THE PLAYER JUST BROKE THE HIGH SCORE! Shout about it.",
		died:    "The player died with a score of %d.",
	},
}

func personaFor(lang Language) persona {
	if p, ok := personas[lang]; ok {
		return p
	}
	return personas[LangPortuguese]
}

func (p persona) tier(t Tier) string {
	switch t {
	case TierLow:
		return p.low
	case TierMid:
		return p.mid
	}
	return p.high
}

// SystemInstruction is the persona sent with every request. Only the rule for
// the score's tier is included.
func SystemInstruction(lang Language, score, previousHigh int) string {
	p := personaFor(lang)
	lines := []string{p.intro, p.brevity, p.tier(TierFor(score))}
	if IsNewRecord(score, previousHigh) {
		lines = append(lines, p.record)
	}
	return strings.Join(lines, "\n")
}

// Prompt is the user turn describing the run.
func Prompt(lang Language, score int) string {
	return fmt.Sprintf(personaFor(lang).died, score)
}
