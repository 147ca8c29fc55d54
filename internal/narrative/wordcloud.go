package narrative

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"policyinsight/internal/llm"
	"policyinsight/internal/logging"
	"policyinsight/internal/util/jsonutil"
)

var (
	wordPattern = regexp.MustCompile(`\b[a-z]{4,}\b`)
	stopWords   = map[string]struct{}{
		"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "a": {}, "an": {}, "and": {}, "or": {},
		"but": {}, "in": {}, "with": {}, "to": {}, "for": {}, "of": {}, "as": {}, "by": {},
		"this": {}, "that": {}, "will": {}, "have": {}, "from": {}, "should": {}, "would": {},
	}
)

// WordCloud returns keyword weights for up to the first 50 texts. When the
// provider fails it counts local word frequencies instead.
func (w *Writer) WordCloud(ctx context.Context, texts []string) map[string]int {
	if len(texts) == 0 {
		return map[string]int{}
	}
	sample := head(texts, wordCloudItems)
	payload, _ := jsonutil.MarshalNoEscape(sample)
	prompt := fmt.Sprintf(`Extract the most important keywords from these texts and their frequencies:

Texts: %s

Return ONLY a JSON object like:
{
  "keyword1": 15,
  "keyword2": 12,
  "keyword3": 8
}

Include 20-30 most relevant keywords.`, payload)

	out, err := w.generate(ctx, llm.PhaseWordCloud, prompt, wordsMaxTokens)
	if err == nil {
		words, perr := ParseWordCloud(out)
		if perr == nil {
			return words
		}
		err = perr
	}
	logging.Warn("word cloud falling back to local counts", "err", err)
	return WordFrequency(sample)
}

// ParseWordCloud reads a {"word": count} object. Non-positive or
// non-numeric weights are dropped.
func ParseWordCloud(resp string) (map[string]int, error) {
	var raw map[string]float64
	if err := jsonutil.DecodeObject(resp, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		k = strings.TrimSpace(k)
		if k == "" || v <= 0 {
			continue
		}
		out[k] = int(v + 0.5)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no keywords", llm.ErrMalformedResponse)
	}
	return out, nil
}

// WordFrequency counts lowercase ASCII words of four or more letters,
// skipping stop words.
func WordFrequency(texts []string) map[string]int {
	out := map[string]int{}
	for _, t := range texts {
		for _, word := range wordPattern.FindAllString(strings.ToLower(t), -1) {
			if _, stop := stopWords[word]; stop {
				continue
			}
			out[word]++
		}
	}
	return out
}
