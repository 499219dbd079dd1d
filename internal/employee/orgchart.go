package employee

import (
	"sort"

	employeeerrors "go-timeoff/internal/employee/errors"
)

// BuildOrgChart folds the flat employee list into a parent -> children tree
// keyed by manager email. An employee becomes a root when they have no
// manager, their manager email is unknown in the company, or they point at
// themselves. A cycle among non-root employees leaves them unreachable from
// any root; that is reported as ErrCyclicHierarchy instead of silently
// producing a partial tree.
func BuildOrgChart(employees []Employee) ([]*OrgNode, error) {
	if len(employees) == 0 {
		return []*OrgNode{}, nil
	}

	byEmail := make(map[string]*OrgNode, len(employees))
	for _, e := range employees {
		byEmail[e.Email] = &OrgNode{
			ID:         e.ID.String(),
			FullName:   e.FullName,
			Email:      e.Email,
			Department: e.Department,
			Position:   e.Position,
			Children:   []*OrgNode{},
		}
	}

	var roots []*OrgNode
	for _, e := range employees {
		node := byEmail[e.Email]

		if e.ManagerEmail == nil || *e.ManagerEmail == "" || *e.ManagerEmail == e.Email {
			roots = append(roots, node)
			continue
		}
		manager, ok := byEmail[*e.ManagerEmail]
		if !ok {
			roots = append(roots, node)
			continue
		}
		manager.Children = append(manager.Children, node)
	}

	// Every employee must be reachable from a root; whatever is left over
	// sits on a manager cycle.
	reachable := make(map[string]bool, len(employees))
	stack := append([]*OrgNode(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[n.Email] {
			continue
		}
		reachable[n.Email] = true
		stack = append(stack, n.Children...)
	}

	if len(reachable) != len(byEmail) {
		var orphaned []string
		for email := range byEmail {
			if !reachable[email] {
				orphaned = append(orphaned, email)
			}
		}
		sort.Strings(orphaned)
		return nil, employeeerrors.CyclicHierarchy(orphaned)
	}

	sortNodes(roots)
	return roots, nil
}

func sortNodes(nodes []*OrgNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].FullName < nodes[j].FullName })
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
