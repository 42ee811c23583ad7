package domain

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryLecture Category = "lecture"
	CategoryLab     Category = "lab"
)

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryLecture, "":
		return CategoryLecture, nil
	case CategoryLab:
		return CategoryLab, nil
	}
	return "", fmt.Errorf("unknown subject category %q", s)
}

// Classification is the declared kind of a subject and the scalar applied to
// its derived class total.
type Classification struct {
	Category   Category
	Multiplier int
}

func (c Classification) IsLab() bool {
	return c.Category == CategoryLab
}

// Classifier resolves the classification of a subject label. Labels without
// an explicit entry fall back to the "lab" substring rule when InferLabs is
// set, otherwise they are lectures.
type Classifier struct {
	Subjects  map[string]Classification
	InferLabs bool
}

func (c Classifier) Classify(label string) Classification {
	if cl, ok := c.Subjects[label]; ok {
		if cl.Multiplier <= 0 {
			cl.Multiplier = 1
		}
		if cl.Category == "" {
			cl.Category = c.inferCategory(label)
		}
		return cl
	}

	return Classification{
		Category:   c.inferCategory(label),
		Multiplier: 1,
	}
}

func (c Classifier) inferCategory(label string) Category {
	if c.InferLabs && strings.Contains(strings.ToLower(label), "lab") {
		return CategoryLab
	}
	return CategoryLecture
}
