package rules

import (
	"sort"
	"strings"
	"sync"

	"github.com/sajari/fuzzy"
)

// Language is a normalized language tag.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	React      Language = "react"
	Python     Language = "python"
	Java       Language = "java"
	Generic    Language = "generic"
)

var aliases = map[string]Language{
	"javascript": JavaScript,
	"js":         JavaScript,
	"node":       JavaScript,
	"typescript": TypeScript,
	"ts":         TypeScript,
	"react":      React,
	"jsx":        React,
	"tsx":        React,
	"python":     Python,
	"py":         Python,
	"java":       Java,
}

// Normalize maps a free-form tag to a known Language. Unknown tags map to
// Generic and report false.
func Normalize(tag string) (Language, bool) {
	lang, ok := aliases[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return Generic, false
	}
	return lang, true
}

// Script reports whether the language belongs to the JavaScript family.
func (l Language) Script() bool {
	return l == JavaScript || l == TypeScript || l == React
}

// Braced reports whether blocks are delimited by braces rather than indentation.
func (l Language) Braced() bool {
	return l.Script() || l == Java
}

// KnownTags returns every accepted language tag, sorted.
func KnownTags() []string {
	tags := make([]string, 0, len(aliases))
	for tag := range aliases {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

var (
	tagModel     *fuzzy.Model
	tagModelOnce sync.Once
)

func getTagModel() *fuzzy.Model {
	tagModelOnce.Do(func() {
		model := fuzzy.NewModel()
		model.SetDepth(2)
		model.SetThreshold(1)
		model.SetUseAutocomplete(false)
		for tag := range aliases {
			model.TrainWord(tag)
		}
		tagModel = model
	})
	return tagModel
}

// Suggest returns the closest known tag for a misspelled one, or "" when
// nothing is within two edits.
func Suggest(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ""
	}
	if _, ok := aliases[tag]; ok {
		return tag
	}
	return getTagModel().SpellCheck(tag)
}
