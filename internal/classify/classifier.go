package classify

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Kind é o resultado da classificação de uma resposta recebida.
type Kind string

const (
	KindUnsubscribe Kind = "unsubscribe"
	KindInterested  Kind = "interested"
	KindNeutral     Kind = "neutral"
)

// Palavras-chave padrão. Opt-out sempre vence: ambiguidade nunca vira
// transição irreversível sem sinal claro.
var (
	DefaultOptOutWords = []string{
		"stop",
		"unsubscribe",
		"remove me",
		"opt out",
		"não quero", // leads brasileiros respondem em português
	}
	DefaultInterestWords = []string{
		"yes",
		"interested",
		"tell me more",
		"more info",
		"pricing",
		"how much",
		"schedule",
		"sign me up",
	}
)

// Classifier é uma função pura do corpo da mensagem: nenhum estado oculto,
// mesma entrada produz sempre a mesma saída.
type Classifier struct {
	optOut   *goahocorasick.Machine
	interest *goahocorasick.Machine
}

// NewClassifier monta os autômatos Aho-Corasick com padrões normalizados.
func NewClassifier(optOutWords, interestWords []string) (*Classifier, error) {
	optOut, err := buildMachine(optOutWords)
	if err != nil {
		return nil, err
	}
	interest, err := buildMachine(interestWords)
	if err != nil {
		return nil, err
	}
	return &Classifier{optOut: optOut, interest: interest}, nil
}

// NewDefaultClassifier usa as listas de palavras-chave padrão.
func NewDefaultClassifier() (*Classifier, error) {
	return NewClassifier(DefaultOptOutWords, DefaultInterestWords)
}

// Classify decide {unsubscribe, interested, neutral} para o corpo recebido.
// Opt-out é verificado primeiro e tem precedência sobre qualquer outro match.
func (c *Classifier) Classify(body string) Kind {
	normalized := normalize(body)
	if len(normalized) == 0 {
		return KindNeutral
	}

	if len(c.optOut.MultiPatternSearch(normalized, true)) > 0 {
		return KindUnsubscribe
	}
	if len(c.interest.MultiPatternSearch(normalized, true)) > 0 {
		return KindInterested
	}
	return KindNeutral
}

func buildMachine(words []string) (*goahocorasick.Machine, error) {
	patterns := make([][]rune, len(words))
	for i, w := range words {
		patterns[i] = normalize(w)
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return m, nil
}

// normalize remove pontuação e colapsa espaços, preservando um separador
// entre palavras para que "remove me" case através de quebras de linha.
func normalize(input string) []rune {
	out := make([]rune, 0, len(input))
	pendingSpace := false
	for _, r := range input {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			pendingSpace = len(out) > 0
			continue
		}
		if pendingSpace {
			out = append(out, ' ')
			pendingSpace = false
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}
