package caption

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxHashtags = 8
	minHashtags = 5
)

var baseHashtags = []string{"#CardNews", "#DailyNews"}

// category pairs a topic hashtag with the keywords that select it.
type category struct {
	name     string
	hashtag  string
	keywords []string
}

// categories are scored in this order; the first strictly highest score wins.
var categories = []category{
	{name: "politics", hashtag: "#Politics", keywords: []string{
		"election", "government", "president", "congress", "vote",
		"정치", "대통령", "국회", "선거", "정부",
	}},
	{name: "business", hashtag: "#Business", keywords: []string{
		"market", "stock", "economy", "company", "investment",
		"경제", "시장", "기업", "투자", "주식",
	}},
	{name: "technology", hashtag: "#Tech", keywords: []string{
		"ai", "tech", "software", "app", "digital",
		"기술", "인공지능", "소프트웨어", "디지털",
	}},
	{name: "science", hashtag: "#Science", keywords: []string{
		"research", "study", "scientist", "discovery",
		"연구", "과학", "발견",
	}},
	{name: "health", hashtag: "#Health", keywords: []string{
		"health", "medical", "hospital", "vaccine", "disease",
		"건강", "의료", "병원", "백신",
	}},
	{name: "sports", hashtag: "#Sports", keywords: []string{
		"game", "match", "player", "team", "championship",
		"경기", "선수", "팀", "우승",
	}},
}

var hashtagStripRe = regexp.MustCompile(`[^a-zA-Z0-9\x{AC00}-\x{D7A3}]`)

// DetectCategory returns the topic whose keywords occur most often as
// substrings of the tags and title, or "" when none occur.
func DetectCategory(tags []string, title string) string {
	_, name := detectCategory(tags, title)
	return name
}

func detectCategory(tags []string, title string) (string, string) {
	combined := strings.ToLower(strings.Join(tags, " ")) + " " + strings.ToLower(title)
	bestScore := 0
	var best category
	for _, c := range categories {
		score := 0
		for _, kw := range c.keywords {
			if strings.Contains(combined, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best.hashtag, best.name
}

// BuildHashtags returns up to eight hashtags for a story.
//
// The list always opens with #CardNews and #DailyNews, followed by the detected
// topic hashtag and then one hashtag per tag. #News pads short lists when the
// story has tags.
//
// Example:
//
//	BuildHashtags([]string{"election", "seoul"}, "Vote count begins")
//	// ["#CardNews", "#DailyNews", "#Politics", "#election", "#seoul"]
func BuildHashtags(tags []string, title string) []string {
	result := append([]string(nil), baseHashtags...)

	if hashtag, _ := detectCategory(tags, title); hashtag != "" {
		result = append(result, hashtag)
	}

	for _, tag := range tags {
		cleaned := hashtagStripRe.ReplaceAllString(tag, "")
		if utf8.RuneCountInString(cleaned) >= 2 {
			hashtag := "#" + cleaned
			if !contains(result, hashtag) {
				result = append(result, hashtag)
			}
		}
		if len(result) >= maxHashtags {
			break
		}
	}

	if len(result) < minHashtags && len(tags) > 0 {
		result = append(result, "#News")
	}

	if len(result) > maxHashtags {
		result = result[:maxHashtags]
	}
	return result
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
