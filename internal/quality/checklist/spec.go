package checklist

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Spec is the data form of a check: it matches when any pattern is found
// (case-insensitive) and, if MinLength is set, the text is longer than MinLength runes.
type Spec struct {
	Name        string   `yaml:"name"`
	Weight      float64  `yaml:"weight"`
	Priority    Priority `yaml:"priority"`
	Description string   `yaml:"description"`
	Patterns    []string `yaml:"patterns"`
	MinLength   int      `yaml:"minLength,omitempty"`
}

// Compile validates the spec and builds its detection rule.
func (s Spec) Compile() (CheckDefinition, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return CheckDefinition{}, fmt.Errorf("%w: check name is required", ErrInvalidChecklist)
	}
	if s.Weight <= 0 {
		return CheckDefinition{}, fmt.Errorf("%w: check %q weight must be positive", ErrInvalidChecklist, name)
	}
	priority, ok := ParsePriority(string(s.Priority))
	if !ok {
		return CheckDefinition{}, fmt.Errorf("%w: check %q has unknown priority %q", ErrInvalidChecklist, name, s.Priority)
	}
	if len(s.Patterns) == 0 {
		return CheckDefinition{}, fmt.Errorf("%w: check %q needs at least one pattern", ErrInvalidChecklist, name)
	}
	if s.MinLength < 0 {
		return CheckDefinition{}, fmt.Errorf("%w: check %q minLength must not be negative", ErrInvalidChecklist, name)
	}

	compiled := make([]*regexp.Regexp, 0, len(s.Patterns))
	for _, p := range s.Patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return CheckDefinition{}, fmt.Errorf("%w: check %q pattern %q: %v", ErrInvalidChecklist, name, p, err)
		}
		compiled = append(compiled, re)
	}
	minLength := s.MinLength

	description := strings.TrimSpace(s.Description)
	if description == "" {
		description = "Add a " + name + " section."
	}

	return CheckDefinition{
		Name:        name,
		Weight:      s.Weight,
		Priority:    priority,
		Description: description,
		Detect: func(text string) bool {
			if minLength > 0 && utf8.RuneCountInString(text) <= minLength {
				return false
			}
			for _, re := range compiled {
				if re.MatchString(text) {
					return true
				}
			}
			return false
		},
	}, nil
}

// CompileAll compiles specs in order and rejects duplicate names.
func CompileAll(specs []Spec) ([]CheckDefinition, error) {
	seen := make(map[string]bool, len(specs))
	out := make([]CheckDefinition, 0, len(specs))
	for _, s := range specs {
		def, err := s.Compile()
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(def.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate check %q", ErrInvalidChecklist, def.Name)
		}
		seen[key] = true
		out = append(out, def)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no checks defined", ErrInvalidChecklist)
	}
	return out, nil
}

// Names of the checks the engine reads directly.
const (
	TableOfContents  = "Table of Contents"
	Purpose          = "Purpose"
	Scope            = "Scope"
	DocumentControl  = "Document Control"
	Responsibilities = "Responsibilities"
	Procedures       = "Procedures"
	RiskAssessment   = "Risk Assessment"
	Approval         = "Approval"
	ReviewDate       = "Review Date"
)

// ProceduresMinLength is the text length a document must exceed before a
// procedures heading counts as a real procedures section.
const ProceduresMinLength = 1000

// DefaultSpecs returns the illustrative checklist. Deployments override it with a YAML file.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			Name:        TableOfContents,
			Weight:      10,
			Priority:    PriorityLow,
			Description: "Add a table of contents so readers can navigate the procedure.",
			Patterns:    []string{`table of contents`, `\bcontents\b`, `\btoc\b`},
		},
		{
			Name:        Purpose,
			Weight:      10,
			Priority:    PriorityHigh,
			Description: "State the purpose of the procedure and the outcome it ensures.",
			Patterns:    []string{`\bpurpose\b`, `\bobjectives?\b`},
		},
		{
			Name:        Scope,
			Weight:      10,
			Priority:    PriorityHigh,
			Description: "Define the scope: which teams, systems and situations the procedure covers.",
			Patterns:    []string{`\bscope\b`, `\bapplicability\b`},
		},
		{
			Name:        DocumentControl,
			Weight:      15,
			Priority:    PriorityHigh,
			Description: "Add a document control section with version, owner and revision history.",
			Patterns:    []string{`document control`, `version control`, `revision history`, `version history`, `change log`},
		},
		{
			Name:        Responsibilities,
			Weight:      15,
			Priority:    PriorityHigh,
			Description: "List roles and responsibilities for each step of the procedure.",
			Patterns:    []string{`responsibilit(y|ies)`, `roles and responsibilities`, `\braci\b`},
		},
		{
			Name:        Procedures,
			Weight:      20,
			Priority:    PriorityHigh,
			Description: "Expand the procedure section with detailed, step-by-step instructions.",
			Patterns:    []string{`\bprocedures?\b`, `\bsteps?\b`, `\binstructions\b`},
			MinLength:   ProceduresMinLength,
		},
		{
			Name:        RiskAssessment,
			Weight:      10,
			Priority:    PriorityMedium,
			Description: "Include a risk assessment covering likelihood, impact and mitigations.",
			Patterns:    []string{`risk assessment`, `risk analysis`, `risk management`, `risk register`, `risk matrix`},
		},
		{
			Name:        Approval,
			Weight:      5,
			Priority:    PriorityMedium,
			Description: "Add an approval section recording who signed off the procedure.",
			Patterns:    []string{`\bapprov(al|als|ed)\b`, `sign[- ]?off`, `signed off`},
		},
		{
			Name:        ReviewDate,
			Weight:      5,
			Priority:    PriorityLow,
			Description: "Set a review date so the procedure is revisited on schedule.",
			Patterns:    []string{`review date`, `next review`, `date of review`, `review cycle`, `review period`},
		},
	}
}

// Default returns the compiled illustrative checklist.
func Default() []CheckDefinition {
	checks, err := CompileAll(DefaultSpecs())
	if err != nil {
		panic(err)
	}
	return checks
}
