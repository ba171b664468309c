// Package policy holds the access predicates gating lifecycle transitions.
// Each predicate is a pure function of the principal and the target article;
// the role lattice is deliberately not a linear ranking because reporter
// self-ownership bypasses the editor/admin hierarchy for update and submit.
package policy

import (
	"github.com/newsdesk/newsroom/internal/domain"
)

func isEditorial(p domain.Principal) bool {
	return p.Role == domain.RoleEditor || p.Role == domain.RoleAdmin
}

// CanCreate reports whether the principal may author a new article.
// Every authenticated role can.
func CanCreate(p domain.Principal) bool {
	switch p.Role {
	case domain.RoleReporter, domain.RoleEditor, domain.RoleAdmin:
		return true
	}
	return false
}

// CanUpdate allows editors and admins unconditionally; the author may edit
// their own article only while it is draft or rejected.
func CanUpdate(p domain.Principal, a domain.Article) bool {
	if isEditorial(p) {
		return true
	}
	if p.ID != a.AuthorID {
		return false
	}
	return a.Status == domain.StatusDraft || a.Status == domain.StatusRejected
}

// CanSubmit allows only the author to submit their article for approval.
func CanSubmit(p domain.Principal, a domain.Article) bool {
	return p.ID == a.AuthorID
}

// CanApprove allows editors and admins.
func CanApprove(p domain.Principal) bool { return isEditorial(p) }

// CanReject allows editors and admins.
func CanReject(p domain.Principal) bool { return isEditorial(p) }

// CanRollback allows editors and admins.
func CanRollback(p domain.Principal) bool { return isEditorial(p) }

// CanListVersions allows editors and admins.
func CanListVersions(p domain.Principal) bool { return isEditorial(p) }

// CanDelete allows admins only.
func CanDelete(p domain.Principal) bool { return p.Role == domain.RoleAdmin }

// CanView reports whether the principal may read the article. Published
// articles are public (p may be nil); everything else is visible only to the
// author and to editors/admins.
func CanView(p *domain.Principal, a domain.Article) bool {
	if a.IsPublic() {
		return true
	}
	if p == nil {
		return false
	}
	return p.ID == a.AuthorID || isEditorial(*p)
}
