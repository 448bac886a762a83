package rules

import "sort"

// Table is the immutable task -> rules mapping produced by Parse. It is built once
// and passed by pointer to every validator.
type Table struct {
	rules    map[string][]Rule
	warnings []error
}

// NewTable builds a table from rules grouped by task.
func NewTable(byTask map[string][]Rule) *Table {
	t := &Table{rules: make(map[string][]Rule, len(byTask))}
	for task, rules := range byTask {
		t.rules[task] = copyRules(rules)
	}

	return t
}

func copyRules(rules []Rule) []Rule {
	out := append([]Rule(nil), rules...)
	for i := range out {
		out[i].Patterns = append([]Pattern(nil), out[i].Patterns...)
	}

	return out
}

// Tasks returns the task names in lexical order.
func (t *Table) Tasks() []string {
	tasks := make([]string, 0, len(t.rules))
	for task := range t.rules {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)

	return tasks
}

// Rules returns a copy of the rules of a task.
func (t *Table) Rules(task string) ([]Rule, bool) {
	rules, ok := t.rules[task]
	if !ok {
		return nil, false
	}

	return copyRules(rules), true
}

// Has reports whether the table knows a task.
func (t *Table) Has(task string) bool {
	_, ok := t.rules[task]

	return ok
}

// Len returns the total number of rules.
func (t *Table) Len() int {
	n := 0
	for _, rules := range t.rules {
		n += len(rules)
	}

	return n
}

// Warnings returns the parse warnings collected while building the table.
func (t *Table) Warnings() []error {
	return append([]error(nil), t.warnings...)
}
