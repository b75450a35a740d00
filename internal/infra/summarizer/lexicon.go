package summarizer

// Lexicon holds the word lists one language contributes to the heuristics.
// Every list is matched against lowercased text, so entries must be lowercase.
type Lexicon struct {
	// Language is a human readable name used in logs and tests.
	Language string

	// Stopwords are dropped before tag frequency counting.
	Stopwords []string

	// ImpactKeywords mark sentences that describe consequences.
	ImpactKeywords []string

	// FutureKeywords mark forward-looking sentences.
	// Entries are compared against whole whitespace-separated words, so a
	// multi-word entry never matches.
	FutureKeywords []string

	// TimeMarkers are substrings that make a sentence a where/when candidate.
	TimeMarkers []string

	// SentenceFinals close a sentence even when no whitespace follows them.
	SentenceFinals []string
}

// English is the English word table.
var English = Lexicon{
	Language: "english",
	Stopwords: []string{
		"a", "an", "the", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "is", "are", "was", "were", "be", "been", "has",
		"have", "had", "do", "does", "did", "will", "would", "could", "should",
		"may", "might", "shall", "can", "not", "no", "it", "its", "this",
		"that", "from", "as", "if", "so", "up", "about", "into", "over",
		"after", "s", "t", "he", "she", "they", "we", "you", "i",
	},
	ImpactKeywords: []string{
		"impact", "effect", "affect", "result", "consequence", "cause",
		"lead", "significant", "major", "critical", "concern", "risk",
		"billion", "million", "percent", "growth", "decline", "drop",
	},
	FutureKeywords: []string{
		"expect", "plan", "will", "future", "next", "upcoming", "forecast",
		"outlook", "prospect", "remain", "continue", "going forward",
	},
	TimeMarkers: []string{
		"today", "yesterday", "monday", "tuesday", "wednesday",
		"thursday", "friday", "saturday", "sunday",
	},
}

// Korean is the Korean word table.
var Korean = Lexicon{
	Language: "korean",
	Stopwords: []string{
		"의", "가", "이", "은", "는", "을", "를", "에", "에서", "와", "과",
		"도", "로", "으로", "에게", "한", "하는", "및", "등", "더", "또",
		"그", "이런", "저", "것", "수", "때", "중",
	},
	ImpactKeywords: []string{
		"영향", "결과", "파급", "피해", "변화", "충격", "위기",
	},
	FutureKeywords: []string{
		"예정", "전망", "계획", "향후", "예상", "앞으로",
	},
	TimeMarkers: []string{
		"오늘", "어제", "일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일",
	},
	SentenceFinals: []string{"다.", "요."},
}

// wordSet is a set of lowercase words.
type wordSet map[string]struct{}

// lexiconIndex merges several lexicons into lookup tables.
type lexiconIndex struct {
	stopwords      wordSet
	impact         wordSet
	future         wordSet
	timeMarkers    []string
	sentenceFinals [][]rune
}

func newLexiconIndex(lexicons ...Lexicon) *lexiconIndex {
	idx := &lexiconIndex{
		stopwords: wordSet{},
		impact:    wordSet{},
		future:    wordSet{},
	}
	for _, lx := range lexicons {
		for _, w := range lx.Stopwords {
			idx.stopwords[w] = struct{}{}
		}
		for _, w := range lx.ImpactKeywords {
			idx.impact[w] = struct{}{}
		}
		for _, w := range lx.FutureKeywords {
			idx.future[w] = struct{}{}
		}
		idx.timeMarkers = append(idx.timeMarkers, lx.TimeMarkers...)
		for _, f := range lx.SentenceFinals {
			idx.sentenceFinals = append(idx.sentenceFinals, []rune(f))
		}
	}
	return idx
}

var defaultLexicon = newLexiconIndex(English, Korean)
