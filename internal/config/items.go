package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pavelanni/rapm/internal/model"
)

// LoadAnswers reads an answer key with one integer per line. Blank and
// non-numeric lines are skipped.
func LoadAnswers(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var answers []int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		answers = append(answers, n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return answers, nil
}

// BuildItems expands a path template into count items. In the template
// {XX} is the two-digit item number starting at 01, and {Y} is 0 for the
// question and 1..8 for the options. The correct answer for item i comes
// from key[start+i-1] when present.
func BuildItems(pattern string, count int, key []int, start int, prefix string) []model.Item {
	items := make([]model.Item, 0, count)
	for i := 1; i <= count; i++ {
		xx := fmt.Sprintf("%02d", i)
		expand := func(y int) string {
			p := strings.ReplaceAll(pattern, "{XX}", xx)
			return strings.ReplaceAll(p, "{Y}", strconv.Itoa(y))
		}

		opts := make([]string, model.OptionCount)
		for k := range opts {
			opts[k] = expand(k + 1)
		}

		var correct *int
		if idx := start + i - 1; idx >= 0 && idx < len(key) {
			c := key[idx]
			correct = &c
		}

		items = append(items, model.Item{
			ID:       prefix + xx,
			Question: expand(0),
			Options:  opts,
			Correct:  correct,
		})
	}
	return items
}
