package game

import (
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
)

// WordBank holds the candidate words per language tag.
type WordBank struct {
	mu       sync.RWMutex
	lists    map[string][]string
	fallback string
	intn     func(n int) int
}

func NewWordBank(fallback string, lists map[string][]string) *WordBank {
	bank := &WordBank{
		lists:    make(map[string][]string),
		fallback: normalizeLanguage(fallback),
		intn:     rand.IntN,
	}
	for lang, words := range lists {
		bank.Replace(lang, words)
	}
	return bank
}

// Replace installs the word list for a language, dropping blanks and duplicates
// while keeping the original order.
func (b *WordBank) Replace(lang string, words []string) {
	cleaned := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		key := strings.ToLower(word)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, word)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(cleaned) == 0 {
		delete(b.lists, normalizeLanguage(lang))
		return
	}
	b.lists[normalizeLanguage(lang)] = cleaned
}

func (b *WordBank) Has(lang string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.lists[normalizeLanguage(lang)]
	return ok
}

// Resolve maps a requested language to the tag whose list will be used.
func (b *WordBank) Resolve(lang string) string {
	lang = normalizeLanguage(lang)
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.lists[lang]; ok {
		return lang
	}
	return b.fallback
}

func (b *WordBank) Languages() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	langs := make([]string, 0, len(b.lists))
	for lang := range b.lists {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func (b *WordBank) Words(lang string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	list := b.listLocked(lang)
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Pick returns a random word for lang that is not in excluded. When every word
// has been used, excluded is cleared and the full list is used again. The caller
// records the returned word.
func (b *WordBank) Pick(lang string, excluded map[string]struct{}) string {
	b.mu.RLock()
	list := b.listLocked(lang)
	b.mu.RUnlock()
	if len(list) == 0 {
		return ""
	}
	candidates := make([]string, 0, len(list))
	for _, word := range list {
		if _, used := excluded[word]; used {
			continue
		}
		candidates = append(candidates, word)
	}
	if len(candidates) == 0 {
		clear(excluded)
		candidates = list
	}
	return candidates[b.intn(len(candidates))]
}

func (b *WordBank) listLocked(lang string) []string {
	if list, ok := b.lists[normalizeLanguage(lang)]; ok {
		return list
	}
	return b.lists[b.fallback]
}

func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// DefaultWordLists is used when no word library is configured.
func DefaultWordLists() map[string][]string {
	return map[string][]string{
		"en": {
			"apple", "bicycle", "castle", "dragon", "elephant", "guitar", "helicopter",
			"island", "jellyfish", "kangaroo", "lighthouse", "mountain", "octopus",
			"penguin", "rainbow", "snowman", "telescope", "umbrella", "volcano", "windmill",
		},
		"es": {
			"manzana", "bicicleta", "castillo", "dragon", "elefante", "guitarra",
			"isla", "medusa", "faro", "montana", "pulpo", "arcoiris", "paraguas", "volcan",
		},
		"fr": {
			"pomme", "velo", "chateau", "dragon", "elephant", "guitare", "ile",
			"phare", "montagne", "pieuvre", "arc-en-ciel", "parapluie", "volcan", "moulin",
		},
		"de": {
			"apfel", "fahrrad", "schloss", "drache", "elefant", "gitarre", "insel",
			"leuchtturm", "berg", "krake", "regenbogen", "schneemann", "regenschirm", "vulkan",
		},
	}
}
