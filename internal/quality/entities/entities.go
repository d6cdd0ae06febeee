package entities

import (
	"regexp"
	"strings"
)

// Rule is one data-described extraction pattern. The first capture group is the
// candidate (the whole match when the pattern has no group); Validate may drop it.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Validate func(string) bool
}

// Result bundles every entity set found in a document.
type Result struct {
	Owners      []string
	Dates       []string
	Departments []string
	Roles       []string
}

func Extract(text string) Result {
	return Result{
		Owners:      Owners(text),
		Dates:       Dates(text),
		Departments: Departments(text),
		Roles:       Roles(text),
	}
}

// Owners returns validated owner names, deduplicated in first-seen order.
func Owners(text string) []string {
	return apply(text, OwnerRules)
}

// Dates returns validated sign-off and review dates exactly as written.
func Dates(text string) []string {
	return apply(text, DateRules)
}

func Departments(text string) []string {
	return apply(text, DepartmentRules)
}

// Roles reports which vocabulary terms appear as whole words, lower-cased.
func Roles(text string) []string {
	out := make([]string, 0)
	seen := make(map[string]bool)
	for _, m := range roleRe.FindAllString(text, -1) {
		term := strings.ToLower(m)
		if seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

func apply(text string, rules []Rule) []string {
	out := make([]string, 0)
	seen := make(map[string]bool)
	for _, rule := range rules {
		for _, m := range rule.Pattern.FindAllStringSubmatch(text, -1) {
			candidate := m[0]
			if len(m) > 1 {
				candidate = m[1]
			}
			candidate = strings.TrimRight(strings.TrimSpace(candidate), " .:")
			if candidate == "" || seen[candidate] {
				continue
			}
			if rule.Validate != nil && !rule.Validate(candidate) {
				continue
			}
			seen[candidate] = true
			out = append(out, candidate)
		}
	}
	return out
}

// labeled builds a rule that captures the value after "label:" up to a line,
// comma or semicolon boundary.
func labeled(name, label string, validate func(string) bool) Rule {
	return Rule{
		Name:     name,
		Pattern:  regexp.MustCompile(`(?i)\b` + label + `\s*:[ \t]*([^\r\n,;]+)`),
		Validate: validate,
	}
}

var OwnerRules = []Rule{
	labeled("owner", `owner`, IsValidOwnerName),
	labeled("prepared_by", `prepared\s+by`, IsValidOwnerName),
	labeled("authored_by", `authored\s+by`, IsValidOwnerName),
	labeled("responsible", `responsible`, IsValidOwnerName),
	labeled("accountable", `accountable`, IsValidOwnerName),
	labeled("created_by", `created\s+by`, IsValidOwnerName),
	labeled("maintained_by", `maintained\s+by`, IsValidOwnerName),
}

var DepartmentRules = []Rule{
	labeled("department", `department`, isValidDepartment),
	labeled("division", `division`, isValidDepartment),
	labeled("unit", `unit`, isValidDepartment),
	labeled("team", `team`, isValidDepartment),
}

func isValidDepartment(value string) bool {
	n := len([]rune(value))
	return n >= 3 && n <= 99
}

var roleVocabulary = []string{
	"manager", "director", "officer", "analyst", "supervisor", "coordinator",
	"administrator", "lead", "engineer", "specialist", "executive", "head",
	"auditor", "controller", "consultant", "technician",
}

var roleRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(roleVocabulary, "|") + `)\b`)
